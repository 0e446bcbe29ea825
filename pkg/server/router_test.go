package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shouni/image-gen-source/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestRouter(t *testing.T, backend Backend, opts ...Option) *Router {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	r, err := NewRouter(backend, opts...)
	require.NoError(t, err)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter(t *testing.T) {
	_, err := NewRouter(nil)
	assert.Error(t, err)
}

func TestRouter_Generate(t *testing.T) {
	t.Run("正常系: base64 の画像とメタデータを返す", func(t *testing.T) {
		backend := &mockBackend{generateFunc: func(ctx context.Context, req domain.GenerationRequest) ([]domain.ImageResponse, error) {
			return []domain.ImageResponse{{Data: []byte("one")}, {Data: []byte("two")}}, nil
		}}
		r := newTestRouter(t, backend)

		rec := post(r, `{"prompt":"a cat","aspectRatio":"16:9","numberOfImages":2,"size":"large","negativePrompt":"dog"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp domain.GenerateImageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []string{
			base64.StdEncoding.EncodeToString([]byte("one")),
			base64.StdEncoding.EncodeToString([]byte("two")),
		}, resp.Images)
		assert.Equal(t, domain.ResponseMetadata{
			Prompt:      "a cat",
			AspectRatio: "16:9",
			Model:       "mock-model",
			GeneratedAt: "2026-01-02T03:04:05Z",
		}, resp.Metadata)

		got := backend.lastRequest.Options
		assert.Equal(t, domain.AspectRatioLandscape, got.AspectRatio)
		assert.Equal(t, 2, got.NumberOfImages)
		assert.Equal(t, domain.SizeLarge, got.Size)
		assert.Equal(t, "dog", got.NegativePrompt)
		assert.True(t, got.EnhancePrompt)
	})

	t.Run("省略されたオプションは既定値で補う", func(t *testing.T) {
		backend := &mockBackend{}
		r := newTestRouter(t, backend, WithEnhancePrompt(false))

		rec := post(r, `{"prompt":"a cat"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		want := domain.DefaultOptions()
		want.EnhancePrompt = false
		assert.Equal(t, want, backend.lastRequest.Options)
	})

	t.Run("異常系: 400 を返しバックエンドを呼ばない", func(t *testing.T) {
		cases := []struct {
			name string
			body string
		}{
			{"不正なJSON", `{"prompt":`},
			{"空のプロンプト", `{"prompt":"   "}`},
			{"未対応の比率", `{"prompt":"a cat","aspectRatio":"21:9"}`},
			{"枚数が範囲外", `{"prompt":"a cat","numberOfImages":5}`},
			{"未対応のサイズ", `{"prompt":"a cat","size":"huge"}`},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				backend := &mockBackend{}
				rec := post(newTestRouter(t, backend), tc.body)

				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, 0, backend.calls)
				assert.Contains(t, rec.Body.String(), `"error"`)
			})
		}
	})

	t.Run("異常系: バックエンドの失敗は 502", func(t *testing.T) {
		backend := &mockBackend{generateFunc: func(ctx context.Context, req domain.GenerationRequest) ([]domain.ImageResponse, error) {
			return nil, errors.New("quota exceeded")
		}}
		rec := post(newTestRouter(t, backend), `{"prompt":"a cat"}`)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.NotContains(t, rec.Body.String(), "quota exceeded")
	})

	t.Run("GET は許可されない", func(t *testing.T) {
		r := newTestRouter(t, &mockBackend{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, &mockBackend{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","model":"mock-model"}`, rec.Body.String())
}
