package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/image-gen-source/pkg/domain"
	"google.golang.org/genai"
)

// DefaultImagenModel は Imagen バックエンドの既定モデルです。
const DefaultImagenModel = "imagen-4.0-generate-001"

// ImagesModel は genai.Models の画像生成部分です。*genai.Models はこのインターフェースを満たします。
type ImagesModel interface {
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// ImagenBackend は Imagen の GenerateImages API で画像を生成するバックエンドです。
type ImagenBackend struct {
	models ImagesModel
	model  string
}

// NewImagenBackend は依存関係を注入して ImagenBackend を初期化します。
func NewImagenBackend(models ImagesModel, model string) (*ImagenBackend, error) {
	if models == nil {
		return nil, fmt.Errorf("models (ImagesModel) is required")
	}
	if model == "" {
		model = DefaultImagenModel
	}
	return &ImagenBackend{models: models, model: model}, nil
}

// Model は使用するモデル名を返します。
func (b *ImagenBackend) Model() string { return b.model }

// Generate はドメインのリクエストを GenerateImagesConfig に変換して実行します。
func (b *ImagenBackend) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.ImageResponse, error) {
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: int32(req.Options.NumberOfImages),
		AspectRatio:    imagenAspectRatio(ctx, req.Options.AspectRatio),
		NegativePrompt: req.Options.NegativePrompt,
		EnhancePrompt:  req.Options.EnhancePrompt,
		ImageSize:      imagenSize(req.Options.Size),
		OutputMIMEType: "image/png",
	}

	resp, err := b.models.GenerateImages(ctx, b.model, req.Prompt, cfg)
	if err != nil {
		return nil, fmt.Errorf("Imagen画像生成エラー: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("Imagenからの有効な応答がありませんでした")
	}

	images := make([]domain.ImageResponse, 0, len(resp.GeneratedImages))
	for i, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			// 安全フィルターで除外された画像は理由だけ残して読み飛ばす
			reason := ""
			if gi != nil {
				reason = gi.RAIFilteredReason
			}
			slog.WarnContext(ctx, "画像データが含まれていないため除外しました", "index", i, "rai_reason", reason)
			continue
		}
		mimeType := gi.Image.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		images = append(images, domain.ImageResponse{Data: gi.Image.ImageBytes, MimeType: mimeType})
	}
	return images, nil
}

// imagenAspectRatio は Imagen が受け付けない比率を最も近い比率に置き換えます。
func imagenAspectRatio(ctx context.Context, ar domain.AspectRatio) string {
	if ar == domain.AspectRatioClassic {
		slog.DebugContext(ctx, "Imagen は 3:2 に対応していないため 4:3 で生成します")
		return domain.AspectRatioStandard.String()
	}
	return ar.String()
}

// imagenSize は Imagen の ImageSize（長辺 1K/2K）に対応付けます。未指定はモデル既定です。
func imagenSize(s domain.Size) string {
	switch s {
	case domain.SizeSmall, domain.SizeMedium:
		return "1K"
	case domain.SizeLarge, domain.SizeExtraLarge:
		return "2K"
	}
	return ""
}
