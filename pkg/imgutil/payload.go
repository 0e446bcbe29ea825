package imgutil

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultMimeType は判別できなかった画像に使う MIME タイプです。
const DefaultMimeType = "image/png"

var ErrInvalidPayload = errors.New("invalid image payload")

// EncodePayload は画像バイト列をプレフィックスなしの base64 文字列にします。
func EncodePayload(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodePayload は base64 の画像ペイロードをデコードし、MIME タイプと共に返します。
// data URI 形式が渡された場合はプレフィックスの MIME タイプを優先します。
func DecodePayload(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	declared := ""
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return nil, "", fmt.Errorf("%w: data URI が base64 形式ではありません", ErrInvalidPayload)
		}
		declared = strings.TrimSuffix(header, ";base64")
		payload = body
	}
	if payload == "" {
		return nil, "", fmt.Errorf("%w: 空のペイロードです", ErrInvalidPayload)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if declared != "" {
		return data, declared, nil
	}
	return data, SniffMimeType(data), nil
}

// SniffMimeType は先頭バイトから画像の MIME タイプを推定します。画像でなければ PNG とみなします。
func SniffMimeType(data []byte) string {
	mimeType := http.DetectContentType(data)
	if strings.HasPrefix(mimeType, "image/") {
		return mimeType
	}
	return DefaultMimeType
}

// DataURI はプレフィックスなしの base64 ペイロードを表示用の data URI にします。
// デコードできないペイロードは PNG として扱います。
func DataURI(payload string) string {
	mimeType := DefaultMimeType
	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		mimeType = SniffMimeType(data)
	}
	return "data:" + mimeType + ";base64," + payload
}

// Extension は MIME タイプに対応するファイル拡張子を返します。
func Extension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".png"
}
