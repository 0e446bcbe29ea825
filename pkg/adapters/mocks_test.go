package adapters

import (
	"context"
	"sync"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/image-gen-source/pkg/domain"
	"google.golang.org/genai"
)

// mockPoster は JSONPoster のテスト用モックです。
type mockPoster struct {
	lastURL  string
	lastData any
	postFunc func(ctx context.Context, url string, data any) ([]byte, error)
}

func (m *mockPoster) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	m.lastURL = url
	m.lastData = data
	if m.postFunc != nil {
		return m.postFunc(ctx, url, data)
	}
	return []byte(`{"images":[]}`), nil
}

// mockImagesModel は ImagesModel のテスト用モックです。
type mockImagesModel struct {
	lastModel  string
	lastPrompt string
	lastConfig *genai.GenerateImagesConfig
	resp       *genai.GenerateImagesResponse
	err        error
}

func (m *mockImagesModel) GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	m.lastModel = model
	m.lastPrompt = prompt
	m.lastConfig = config
	return m.resp, m.err
}

// mockAIClient は gemini.GenerativeModel のテスト用モックです。
// 使わないメソッドは埋め込んだインターフェースで解決します。
type mockAIClient struct {
	gemini.GenerativeModel

	mu           sync.Mutex
	calls        int
	lastParts    []*genai.Part
	lastOpts     gemini.GenerateOptions
	generateFunc func(call int) (*gemini.Response, error)
}

func (m *mockAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.lastParts = parts
	m.lastOpts = opts
	m.mu.Unlock()

	if m.generateFunc != nil {
		return m.generateFunc(call)
	}
	return imageResponse("image/png", []byte("fake")), nil
}

func imageResponse(mimeType string, data []byte) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}},
				},
			}},
		},
	}
}

// mockBackend は ImageBackend のテスト用モックです。
type mockBackend struct {
	calls int
	err   error
}

func (m *mockBackend) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.ImageResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []domain.ImageResponse{{Data: []byte(req.Prompt), MimeType: "image/png"}}, nil
}

func (m *mockBackend) Model() string { return "mock-model" }
