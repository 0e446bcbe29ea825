package generator

import "github.com/shouni/image-gen-source/pkg/domain"

// SelectImage は画像ペイロードと生成元のプロンプトからアセット記述子を作る純粋関数です。
// ペイロードにはプレフィックスを付け外ししません。
func SelectImage(image, prompt string) domain.SelectedAsset {
	return domain.SelectedAsset{
		Kind: domain.AssetKindInlineData,
		Data: image,
		Metadata: domain.AssetMetadata{
			Description: prompt,
			Title:       prompt,
			Attribution: domain.DefaultAttribution,
		},
	}
}
