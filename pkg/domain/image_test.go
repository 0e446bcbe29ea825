package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRequest_HasPrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   bool
	}{
		{"空文字", "", false},
		{"空白のみ", "   ", false},
		{"改行とタブのみ", "\n\t ", false},
		{"通常のプロンプト", "a cat", true},
		{"前後に空白があるプロンプト", "  a cat  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := GenerationRequest{Prompt: tt.prompt, Options: DefaultOptions()}
			assert.Equal(t, tt.want, req.HasPrompt())
		})
	}
}

func TestGenerationRequest_Payload(t *testing.T) {
	t.Run("negativePrompt が空ならキーごと省略される", func(t *testing.T) {
		req := GenerationRequest{Prompt: "a cat", Options: DefaultOptions()}

		raw, err := json.Marshal(req.Payload())
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.NotContains(t, body, "negativePrompt")
		assert.Equal(t, "a cat", body["prompt"])
		assert.Equal(t, "1:1", body["aspectRatio"])
		assert.EqualValues(t, 1, body["numberOfImages"])
		assert.Equal(t, "medium", body["size"])
		assert.NotContains(t, body, "enhancePrompt")
	})

	t.Run("negativePrompt があればそのまま送られる", func(t *testing.T) {
		opts := DefaultOptions()
		opts.NegativePrompt = "  blurry, text "
		req := GenerationRequest{Prompt: "a cat", Options: opts}

		raw, err := json.Marshal(req.Payload())
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "  blurry, text ", body["negativePrompt"])
	})

	t.Run("size が未指定ならキーごと省略される", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Size = SizeUnset
		req := GenerationRequest{Prompt: "a cat", Options: opts}

		raw, err := json.Marshal(req.Payload())
		require.NoError(t, err)
		assert.NotContains(t, string(raw), `"size"`)
	})

	t.Run("プロンプトはトリムせずに送られる", func(t *testing.T) {
		req := GenerationRequest{Prompt: "  a cat ", Options: DefaultOptions()}
		assert.Equal(t, "  a cat ", req.Payload().Prompt)
	})
}

func TestGenerateImageResponse_Decode(t *testing.T) {
	raw := `{"images":["abc","def"],"metadata":{"prompt":"a cat","aspectRatio":"1:1","model":"imagen","generatedAt":"2026-01-01T00:00:00Z"}}`

	var resp GenerateImageResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	assert.Equal(t, []string{"abc", "def"}, resp.Images)
	assert.Equal(t, "imagen", resp.Metadata.Model)
	assert.Equal(t, "2026-01-01T00:00:00Z", resp.Metadata.GeneratedAt)
}

func TestSelectedAsset_JSONShape(t *testing.T) {
	asset := SelectedAsset{
		Kind: AssetKindInlineData,
		Data: "xyz",
		Metadata: AssetMetadata{
			Description: "a cat",
			Title:       "a cat",
			Attribution: DefaultAttribution,
		},
	}

	raw, err := json.Marshal(asset)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "inline-data",
		"data": "xyz",
		"metadata": {"description": "a cat", "title": "a cat", "attribution": "`+DefaultAttribution+`"}
	}`, string(raw))
}
