package server

import (
	"context"

	"github.com/shouni/image-gen-source/pkg/domain"
)

// mockBackend は Backend のテスト用モックです。
type mockBackend struct {
	calls        int
	lastRequest  domain.GenerationRequest
	generateFunc func(ctx context.Context, req domain.GenerationRequest) ([]domain.ImageResponse, error)
}

func (m *mockBackend) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.ImageResponse, error) {
	m.calls++
	m.lastRequest = req
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return []domain.ImageResponse{{Data: []byte("fake-image"), MimeType: "image/png"}}, nil
}

func (m *mockBackend) Model() string { return "mock-model" }
