package assetsource

import (
	"context"

	"github.com/shouni/image-gen-source/pkg/domain"
)

// mockRequester は generator.ImageRequester のテスト用モックです。
type mockRequester struct {
	calls       int
	lastRequest domain.GenerationRequest
	requestFunc func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerateImageResponse, error)
}

func (m *mockRequester) RequestImages(ctx context.Context, req domain.GenerationRequest) (*domain.GenerateImageResponse, error) {
	m.calls++
	m.lastRequest = req
	if m.requestFunc != nil {
		return m.requestFunc(ctx, req)
	}
	return &domain.GenerateImageResponse{Images: []string{"abc"}}, nil
}

// mockPoster は adapters.JSONPoster のテスト用モックです。
type mockPoster struct {
	body []byte
	err  error
}

func (m *mockPoster) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	return m.body, m.err
}
