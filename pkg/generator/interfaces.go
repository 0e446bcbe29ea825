package generator

import (
	"context"

	"github.com/shouni/image-gen-source/pkg/domain"
)

// ImageRequester は画像生成エンドポイントへの1回の呼び出しを担当するインターフェースです。
type ImageRequester interface {
	// RequestImages は req をエンドポイントへ送信し、デコード済みのレスポンスを返します。
	// 通信失敗や 2xx 以外のステータスはエラーとして返します。
	RequestImages(ctx context.Context, req domain.GenerationRequest) (*domain.GenerateImageResponse, error)
}

// RequesterFunc は関数を ImageRequester として扱うためのアダプターです。
type RequesterFunc func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerateImageResponse, error)

// RequestImages は f(ctx, req) を呼び出します。
func (f RequesterFunc) RequestImages(ctx context.Context, req domain.GenerationRequest) (*domain.GenerateImageResponse, error) {
	return f(ctx, req)
}
