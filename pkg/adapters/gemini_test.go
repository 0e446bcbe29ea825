package adapters

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/image-gen-source/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewGeminiBackend(t *testing.T) {
	_, err := NewGeminiBackend(nil, "")
	assert.Error(t, err)

	b, err := NewGeminiBackend(&mockAIClient{}, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, b.Model())
}

func TestGeminiBackend_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("要求枚数分を呼び出して順序どおりに返す", func(t *testing.T) {
		ai := &mockAIClient{}
		b, _ := NewGeminiBackend(ai, "")

		opts := domain.DefaultOptions()
		opts.NumberOfImages = 3
		opts.AspectRatio = domain.AspectRatioClassic
		opts.NegativePrompt = "text"
		images, err := b.Generate(ctx, domain.GenerationRequest{Prompt: " a cat ", Options: opts})

		require.NoError(t, err)
		assert.Len(t, images, 3)
		assert.Equal(t, 3, ai.calls)
		assert.Equal(t, "3:2", ai.lastOpts.AspectRatio)
		require.Len(t, ai.lastParts, 1)
		assert.Equal(t, "a cat\n\nAvoid: text", ai.lastParts[0].Text)
	})

	t.Run("1枚でも失敗すればエラーを返す", func(t *testing.T) {
		cause := errors.New("ai error")
		ai := &mockAIClient{generateFunc: func(call int) (*gemini.Response, error) {
			if call == 2 {
				return nil, cause
			}
			return imageResponse("image/png", []byte(fmt.Sprintf("img-%d", call))), nil
		}}
		b, _ := NewGeminiBackend(ai, "")

		opts := domain.DefaultOptions()
		opts.NumberOfImages = 2
		_, err := b.Generate(ctx, domain.GenerationRequest{Prompt: "a cat", Options: opts})
		assert.ErrorIs(t, err, cause)
	})
}

func TestParseToImage(t *testing.T) {
	t.Run("正常系: 画像パーツを抽出する", func(t *testing.T) {
		out, err := parseToImage(imageResponse("image/png", []byte("dummy-data")))
		require.NoError(t, err)
		assert.Equal(t, "dummy-data", string(out.Data))
		assert.Equal(t, "image/png", out.MimeType)
	})

	t.Run("異常系: 応答が空", func(t *testing.T) {
		_, err := parseToImage(nil)
		assert.Error(t, err)
		_, err = parseToImage(&gemini.Response{RawResponse: &genai.GenerateContentResponse{}})
		assert.Error(t, err)
	})

	t.Run("異常系: テキストのみ", func(t *testing.T) {
		resp := &gemini.Response{RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "just text"}}}}},
		}}
		_, err := parseToImage(resp)
		assert.ErrorContains(t, err, "画像データが見つかりませんでした")
	})

	t.Run("異常系: FinishReason が SAFETY", func(t *testing.T) {
		resp := &gemini.Response{RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}}
		_, err := parseToImage(resp)
		assert.ErrorContains(t, err, "FinishReason")
	})
}
