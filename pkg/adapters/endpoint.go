package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/shouni/image-gen-source/pkg/domain"
	"github.com/shouni/image-gen-source/pkg/generator"
)

// JSONPoster は JSON を POST してレスポンスボディを取得する HTTP クライアントです。
// 既定の実装は1回だけ送信する HTTPPoster です。
type JSONPoster interface {
	PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error)
}

// EndpointClient は設定されたエンドポイントへ生成リクエストを送る generator.ImageRequester です。
type EndpointClient struct {
	endpoint   string
	httpClient JSONPoster
}

// NewEndpointClient はエンドポイントを検証して EndpointClient を初期化します。
// エンドポイントが空または不正な場合は generator.ConfigurationError を返します。
func NewEndpointClient(endpoint string, httpClient JSONPoster) (*EndpointClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, generator.NewMissingEndpointError()
	}
	if err := validateEndpoint(endpoint); err != nil {
		return nil, &generator.ConfigurationError{Field: "endpoint", Err: err}
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}

	return &EndpointClient{
		endpoint:   endpoint,
		httpClient: httpClient,
	}, nil
}

// Endpoint は送信先のアドレスを返します。
func (c *EndpointClient) Endpoint() string { return c.endpoint }

// RequestImages はリクエストを JSON で POST し、レスポンスをデコードして返します。
func (c *EndpointClient) RequestImages(ctx context.Context, req domain.GenerationRequest) (*domain.GenerateImageResponse, error) {
	body, err := c.httpClient.PostJSONAndFetchBytes(ctx, c.endpoint, req.Payload())
	if err != nil {
		var te *generator.TransportError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, &generator.TransportError{Err: err}
	}

	var resp domain.GenerateImageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.WarnContext(ctx, "エンドポイントのレスポンスを解析できませんでした", "endpoint", c.endpoint, "error", err)
		return nil, &generator.TransportError{Err: fmt.Errorf("レスポンスの解析に失敗しました: %w", err)}
	}
	return &resp, nil
}

// validateEndpoint は送信先が http(s) の絶対 URL であることを確認します。
// 開発用サーバーを想定してループバックアドレスも許可します。
func validateEndpoint(rawURL string) error {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("URLパース失敗: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}
	if parsedURL.Hostname() == "" {
		return fmt.Errorf("ホストが指定されていません")
	}
	return nil
}
