package domain

// AssetKind は選択されたアセットの種別です。
type AssetKind string

// AssetKindInlineData は画像データをそのまま埋め込むアセットです。
const AssetKindInlineData AssetKind = "inline-data"

// DefaultAttribution は生成画像に付けるクレジット表記です。
const DefaultAttribution = "Generated image by AI Image Generation Source"

// SelectedAsset はホストへ渡すアセット記述子です。
type SelectedAsset struct {
	Kind     AssetKind     `json:"kind"`
	Data     string        `json:"data"`
	Metadata AssetMetadata `json:"metadata"`
}

// AssetMetadata はアセットに付与するメタデータです。
type AssetMetadata struct {
	Description string `json:"description"`
	Title       string `json:"title"`
	Attribution string `json:"attribution"`
}
