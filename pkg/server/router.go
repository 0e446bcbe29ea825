package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shouni/image-gen-source/pkg/domain"
	"github.com/shouni/image-gen-source/pkg/imgutil"
	"golang.org/x/time/rate"
)

// maxRequestBody はリクエストボディの上限です。
const maxRequestBody = 1 << 20

// Backend は画像を実際に生成するバックエンドです。
// adapters.ImagenBackend と adapters.GeminiBackend がこれを満たします。
type Backend interface {
	Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.ImageResponse, error)
	Model() string
}

// Router は生成エンドポイントの契約を満たす開発用の HTTP ハンドラです。
type Router struct {
	router        *mux.Router
	backend       Backend
	enhancePrompt bool
	logger        *slog.Logger
	now           func() time.Time
	metrics       *Metrics
	limiter       *rate.Limiter
}

// Option は Router の構築オプションです。
type Option func(*Router)

// WithLogger はログ出力先を指定します。
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithEnhancePrompt はバックエンドへ渡すプロンプト補正の有無を指定します。
// ワイヤ上のリクエストには含まれないため、サーバー側の設定で決めます。
func WithEnhancePrompt(enabled bool) Option {
	return func(r *Router) { r.enhancePrompt = enabled }
}

// WithClock はメタデータの生成時刻に使う時計を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// NewRouter はルーティングを設定した Router を作成します。
func NewRouter(backend Backend, opts ...Option) (*Router, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	r := &Router{
		router:        mux.NewRouter(),
		backend:       backend,
		enhancePrompt: domain.DefaultOptions().EnhancePrompt,
		logger:        slog.Default(),
		now:           time.Now,
		metrics:       NewMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.router.HandleFunc("/generate", r.rateLimit(r.generateHandler)).Methods(http.MethodPost)
	r.router.HandleFunc("/healthz", r.healthHandler).Methods(http.MethodGet)
	r.router.Handle("/metrics", r.metrics.Handler()).Methods(http.MethodGet)
	return r, nil
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

func (r *Router) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "model": r.backend.Model()})
}

func (r *Router) generateHandler(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := r.logger.With("request_id", uuid.New().String())

	body, err := io.ReadAll(io.LimitReader(req.Body, maxRequestBody))
	if err != nil {
		logger.WarnContext(ctx, "リクエストボディの読み込みに失敗しました", "error", err)
		r.fail(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var payload domain.GenerateImagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		r.fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	genReq, err := r.toGenerationRequest(payload)
	if err != nil {
		logger.InfoContext(ctx, "不正なリクエストを拒否しました", "error", err)
		r.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	start := r.now()
	images, err := r.backend.Generate(ctx, genReq)
	if err != nil {
		logger.ErrorContext(ctx, "画像生成に失敗しました", "model", r.backend.Model(), "error", err)
		r.fail(w, http.StatusBadGateway, "image generation failed")
		return
	}

	resp := domain.GenerateImageResponse{
		Images: make([]string, 0, len(images)),
		Metadata: domain.ResponseMetadata{
			Prompt:      payload.Prompt,
			AspectRatio: genReq.Options.AspectRatio.String(),
			Model:       r.backend.Model(),
			GeneratedAt: r.now().UTC().Format(time.RFC3339),
		},
	}
	for _, img := range images {
		resp.Images = append(resp.Images, imgutil.EncodePayload(img.Data))
	}

	elapsed := r.now().Sub(start)
	r.metrics.observeGeneration(r.backend.Model(), elapsed, len(resp.Images))
	r.metrics.observeStatus(http.StatusOK)
	logger.InfoContext(ctx, "画像を生成しました",
		"model", r.backend.Model(),
		"images", len(resp.Images),
		"elapsed", elapsed,
	)
	writeJSON(w, http.StatusOK, resp)
}

// toGenerationRequest はワイヤ上のペイロードを検証してドメインのリクエストに変換します。
// 省略されたフィールドは既定値で補います。
func (r *Router) toGenerationRequest(p domain.GenerateImagePayload) (domain.GenerationRequest, error) {
	if strings.TrimSpace(p.Prompt) == "" {
		return domain.GenerationRequest{}, errors.New("prompt is required")
	}

	opts := domain.DefaultOptions()
	opts.EnhancePrompt = r.enhancePrompt
	opts.NegativePrompt = p.NegativePrompt
	if p.AspectRatio != "" {
		opts.AspectRatio = domain.AspectRatio(p.AspectRatio)
	}
	if p.NumberOfImages != 0 {
		opts.NumberOfImages = p.NumberOfImages
	}
	if p.Size != "" {
		opts.Size = domain.Size(p.Size)
	}
	if err := opts.Validate(); err != nil {
		return domain.GenerationRequest{}, err
	}
	return domain.GenerationRequest{Prompt: p.Prompt, Options: opts}, nil
}

func (r *Router) fail(w http.ResponseWriter, status int, message string) {
	r.metrics.observeStatus(status)
	writeError(w, status, message)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("レスポンスの書き込みに失敗しました", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
