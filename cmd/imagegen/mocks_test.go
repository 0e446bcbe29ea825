package main

import (
	"context"
	"io"
)

// mockWriter は remoteio.OutputWriter のテスト用モックです。
type mockWriter struct {
	lastURI         string
	lastData        []byte
	lastContentType string
	err             error
}

func (m *mockWriter) Write(ctx context.Context, uri string, contentReader io.Reader, contentType string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(contentReader)
	if err != nil {
		return err
	}
	m.lastURI = uri
	m.lastData = data
	m.lastContentType = contentType
	return nil
}
