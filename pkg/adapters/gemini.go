package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/image-gen-source/pkg/domain"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

// DefaultGeminiModel は Gemini バックエンドの既定モデルです。
const DefaultGeminiModel = "gemini-2.5-flash-image"

// GeminiBackend は Gemini のマルチモーダル生成で画像を作るバックエンドです。
// Gemini は1回の呼び出しで1枚を返すため、要求枚数分を並行に呼び出します。
type GeminiBackend struct {
	aiClient gemini.GenerativeModel
	model    string
}

// NewGeminiBackend は依存関係を注入して GeminiBackend を初期化します。
func NewGeminiBackend(aiClient gemini.GenerativeModel, model string) (*GeminiBackend, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiBackend{aiClient: aiClient, model: model}, nil
}

// Model は使用するモデル名を返します。
func (b *GeminiBackend) Model() string { return b.model }

// Generate は要求枚数分の生成を行い、要求順に並べて返します。
func (b *GeminiBackend) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.ImageResponse, error) {
	parts := []*genai.Part{{Text: composePrompt(req)}}
	opts := gemini.GenerateOptions{
		AspectRatio: req.Options.AspectRatio.String(),
	}

	n := req.Options.NumberOfImages
	if n < 1 {
		n = 1
	}
	slog.InfoContext(ctx, "Geminiに画像生成をリクエストします", "model", b.model, "count", n)

	images := make([]domain.ImageResponse, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			resp, err := b.aiClient.GenerateWithParts(gctx, b.model, parts, opts)
			if err != nil {
				return fmt.Errorf("Gemini画像生成エラー (%d枚目): %w", i+1, err)
			}
			out, err := parseToImage(resp)
			if err != nil {
				return fmt.Errorf("レスポンスパースに失敗しました (%d枚目): %w", i+1, err)
			}
			images[i] = *out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// composePrompt は Gemini に除外要素の指定がないため、ネガティブプロンプトを本文に添えます。
func composePrompt(req domain.GenerationRequest) string {
	prompt := strings.TrimSpace(req.Prompt)
	if neg := strings.TrimSpace(req.Options.NegativePrompt); neg != "" {
		prompt += "\n\nAvoid: " + neg
	}
	return prompt
}

// parseToImage は Gemini のレスポンスから最初の画像パーツを取り出します。
func parseToImage(resp *gemini.Response) (*domain.ImageResponse, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("Geminiからの有効な応答がありませんでした")
	}

	// 最初の候補 (Candidate) のみを利用する
	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &domain.ImageResponse{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	switch candidate.FinishReason {
	case "", genai.FinishReasonUnspecified, genai.FinishReasonStop:
	default:
		return nil, fmt.Errorf("画像生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)
	}
	return nil, fmt.Errorf("画像データが見つかりませんでした")
}
