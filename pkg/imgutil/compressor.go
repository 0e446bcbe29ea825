package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// DefaultJPEGQuality は品質が指定されなかった場合に使う JPEG 品質です。
const DefaultJPEGQuality = 85

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// quality が 1〜100 の範囲外なら DefaultJPEGQuality を使います。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("JPEGへのエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}
