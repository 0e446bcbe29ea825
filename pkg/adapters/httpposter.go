package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/image-gen-source/pkg/generator"
)

// HTTPPoster は httpkit.Client を使って JSON を1回だけ POST する JSONPoster です。
// 生成リクエストは再送しないため、httpkit のリトライ付き送信は使いません。
type HTTPPoster struct {
	client *httpkit.Client
}

// NewHTTPPoster は渡された httpkit.Client で HTTPPoster を初期化します。
func NewHTTPPoster(client *httpkit.Client) (*HTTPPoster, error) {
	if client == nil {
		return nil, fmt.Errorf("client (*httpkit.Client) is required")
	}
	return &HTTPPoster{client: client}, nil
}

// NewDefaultHTTPPoster はタイムアウトとネットワーク検証の有無から HTTPPoster を作ります。
// allowPrivate が true の場合はループバックやプライベートアドレスへの送信を許可します。
// timeout が 0 以下なら httpkit の既定タイムアウトを使います。
func NewDefaultHTTPPoster(timeout time.Duration, allowPrivate bool) *HTTPPoster {
	return &HTTPPoster{client: httpkit.New(timeout, httpkit.WithSkipNetworkValidation(allowPrivate))}
}

// PostJSONAndFetchBytes は data を JSON として url へ送り、2xx のボディを返します。
// 2xx 以外は StatusCode 付きの generator.TransportError になります。
func (p *HTTPPoster) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("リクエストのJSON変換に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", httpkit.UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &generator.TransportError{Err: err}
	}

	status := resp.StatusCode
	body, err := httpkit.HandleResponse(resp)
	if err != nil {
		return nil, &generator.TransportError{
			StatusCode: status,
			Message:    http.StatusText(status),
			Err:        err,
		}
	}
	return body, nil
}
