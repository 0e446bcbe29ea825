package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-remote-io/pkg/s3factory"
	"github.com/shouni/image-gen-source/pkg/domain"
	"github.com/shouni/image-gen-source/pkg/imgutil"
)

// newOutputWriter は保存先に合わせた OutputWriter と、その後始末を返します。
// gs:// と s3:// はそれぞれのクライアントを初期化し、それ以外はローカルに書き出します。
func newOutputWriter(ctx context.Context, dir string) (remoteio.OutputWriter, func() error, error) {
	var (
		factory remoteio.IOFactory
		err     error
	)
	switch {
	case remoteio.IsGCSURI(dir):
		factory, err = gcsfactory.New(ctx)
	case remoteio.IsS3URI(dir):
		factory, err = s3factory.New(ctx)
	default:
		return remoteio.NewUniversalIOWriter(nil, nil), func() error { return nil }, nil
	}
	if err != nil {
		return nil, nil, err
	}

	w, err := factory.OutputWriter()
	if err != nil {
		_ = factory.Close()
		return nil, nil, err
	}
	return w, factory.Close, nil
}

// saveAsset は選択された画像を dir に一意な名前で書き出し、その URI を返します。
func saveAsset(ctx context.Context, w remoteio.OutputWriter, dir string, asset domain.SelectedAsset, asJPEG bool, quality int) (string, error) {
	data, mimeType, err := imgutil.DecodePayload(asset.Data)
	if err != nil {
		return "", err
	}
	if asJPEG && mimeType != "image/jpeg" {
		if data, err = imgutil.CompressToJPEG(data, quality); err != nil {
			return "", err
		}
		mimeType = "image/jpeg"
	}

	uri := outputURI(dir, uuid.New().String()+imgutil.Extension(mimeType))
	if err := w.Write(ctx, uri, bytes.NewReader(data), mimeType); err != nil {
		return "", fmt.Errorf("画像の書き込みに失敗しました: %w", err)
	}
	return uri, nil
}

// outputURI は保存先ディレクトリとファイル名を結合します。バケット URI は / で区切ります。
func outputURI(dir, name string) string {
	if remoteio.IsRemoteURI(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}
