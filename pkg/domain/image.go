package domain

import "strings"

// GenerationRequest は単一の画像生成要求です。
// 送信直前に組み立てられ、永続化はされません。
type GenerationRequest struct {
	Prompt  string
	Options GenerationOptions
}

// HasPrompt は前後の空白を除いたプロンプトが空でないかを返します。
func (r GenerationRequest) HasPrompt() bool {
	return strings.TrimSpace(r.Prompt) != ""
}

// GenerateImagePayload はエンドポイントへ送る JSON ボディです。
// size と negativePrompt は値がある場合のみキーごと送信します。
type GenerateImagePayload struct {
	Prompt         string `json:"prompt"`
	AspectRatio    string `json:"aspectRatio"`
	NumberOfImages int    `json:"numberOfImages"`
	Size           string `json:"size,omitempty"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
}

// Payload はリクエストを送信用ボディに変換します。プロンプトは入力されたまま送ります。
func (r GenerationRequest) Payload() GenerateImagePayload {
	return GenerateImagePayload{
		Prompt:         r.Prompt,
		AspectRatio:    r.Options.AspectRatio.String(),
		NumberOfImages: r.Options.NumberOfImages,
		Size:           r.Options.Size.String(),
		NegativePrompt: r.Options.NegativePrompt,
	}
}

// GenerateImageResponse はエンドポイントの成功レスポンスです。
// Images の各要素は data URI プレフィックスを含まない base64 文字列です。
type GenerateImageResponse struct {
	Images   []string         `json:"images"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata は生成結果に付随する情報です。
type ResponseMetadata struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
	Model       string `json:"model"`
	GeneratedAt string `json:"generatedAt"`
}

// ImageResponse は生成された画像のバイナリとその MIME タイプです。
type ImageResponse struct {
	Data     []byte
	MimeType string
}
