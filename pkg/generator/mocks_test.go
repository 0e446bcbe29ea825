package generator

import (
	"context"
	"sync"

	"github.com/shouni/image-gen-source/pkg/domain"
)

// --- Mocks ---

// mockRequester は ImageRequester のテスト用モックです。
type mockRequester struct {
	mu          sync.Mutex
	calls       int
	lastRequest domain.GenerationRequest
	requestFunc func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerateImageResponse, error)
}

func (m *mockRequester) RequestImages(ctx context.Context, req domain.GenerationRequest) (*domain.GenerateImageResponse, error) {
	m.mu.Lock()
	m.calls++
	m.lastRequest = req
	fn := m.requestFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &domain.GenerateImageResponse{}, nil
}

func (m *mockRequester) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func imagesResponse(images ...string) *domain.GenerateImageResponse {
	return &domain.GenerateImageResponse{
		Images: images,
		Metadata: domain.ResponseMetadata{
			Prompt:      "a cat",
			AspectRatio: "1:1",
			Model:       "mock-model",
			GeneratedAt: "2026-01-01T00:00:00Z",
		},
	}
}

// pendingCall は応答のタイミングをテスト側で制御するための呼び出しです。
type pendingCall struct {
	prompt  string
	ctx     context.Context
	respond chan pendingResult
}

type pendingResult struct {
	resp *domain.GenerateImageResponse
	err  error
}

// controlledRequester は呼び出しごとに pendingCall を送出し、テストが応答するまでブロックします。
// 呼び出し側のコンテキストが取り消されても、テストが応答するまで戻りません。
type controlledRequester struct {
	calls chan *pendingCall
}

func newControlledRequester() *controlledRequester {
	return &controlledRequester{calls: make(chan *pendingCall, 8)}
}

func (c *controlledRequester) RequestImages(ctx context.Context, req domain.GenerationRequest) (*domain.GenerateImageResponse, error) {
	call := &pendingCall{prompt: req.Prompt, ctx: ctx, respond: make(chan pendingResult, 1)}
	c.calls <- call
	r := <-call.respond
	return r.resp, r.err
}
