package generator

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// FallbackFailureMessage は通信エラーから説明を得られなかった場合のメッセージです。
	FallbackFailureMessage = "Failed to generate image"
	// NoImagesMessage は成功レスポンスに画像が含まれなかった場合のメッセージです。
	NoImagesMessage = "No images generated"
)

var (
	ErrEmptyPrompt     = errors.New("empty prompt")
	ErrTransport       = errors.New("image generation request failed")
	ErrNoImages        = errors.New("no images generated")
	ErrMissingEndpoint = errors.New("endpoint is required")
	ErrSuperseded      = errors.New("generation superseded by a newer request")
)

// ValidationError は入力の検証エラーです。通信は行われず、状態も変化しません。
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// TransportError は通信失敗または 2xx 以外のレスポンスです。
// 再度 Generate を呼び出せばリトライできます。
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error は利用者向けのメッセージを返します。
func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil && e.Err.Error() != "":
		return e.Err.Error()
	case e.StatusCode != 0 && http.StatusText(e.StatusCode) != "":
		return http.StatusText(e.StatusCode)
	}
	return FallbackFailureMessage
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// EmptyResultError は成功レスポンスに画像が1枚も含まれなかったことを示します。
type EmptyResultError struct{}

func (e *EmptyResultError) Error() string { return NoImagesMessage }

func (e *EmptyResultError) Is(target error) bool { return target == ErrNoImages }

// ConfigurationError はセットアップ時の致命的な設定エラーです。リトライはできません。
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewMissingEndpointError はエンドポイント未設定の ConfigurationError を作成します。
func NewMissingEndpointError() *ConfigurationError {
	return &ConfigurationError{Field: "endpoint", Err: ErrMissingEndpoint}
}

// toTransportError は任意のエラーを TransportError に正規化します。
func toTransportError(err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	return &TransportError{Err: err}
}
