package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidOption は、オプションのキーまたは値が定義域外であることを示します。
var ErrInvalidOption = errors.New("invalid generation option")

// AspectRatio は生成画像のアスペクト比です。
type AspectRatio string

const (
	AspectRatioSquare    AspectRatio = "1:1"
	AspectRatioLandscape AspectRatio = "16:9"
	AspectRatioStandard  AspectRatio = "4:3"
	AspectRatioClassic   AspectRatio = "3:2"
)

// Valid は定義済みのアスペクト比かどうかを返します。
func (a AspectRatio) Valid() bool {
	switch a {
	case AspectRatioSquare, AspectRatioLandscape, AspectRatioStandard, AspectRatioClassic:
		return true
	}
	return false
}

func (a AspectRatio) String() string { return string(a) }

// Size は生成画像のサイズ区分です。空文字は「未指定」を表します。
type Size string

const (
	SizeUnset      Size = ""
	SizeSmall      Size = "small"
	SizeMedium     Size = "medium"
	SizeLarge      Size = "large"
	SizeExtraLarge Size = "extra-large"
)

// Valid は定義済みのサイズかどうかを返します。未指定は有効として扱います。
func (s Size) Valid() bool {
	switch s {
	case SizeUnset, SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge:
		return true
	}
	return false
}

func (s Size) String() string { return string(s) }

// MinImages と MaxImages は1回の生成で要求できる枚数の範囲です。
const (
	MinImages = 1
	MaxImages = 4
)

// OptionKey は GenerationOptions の単一フィールドを指します。
type OptionKey string

const (
	OptionAspectRatio    OptionKey = "aspectRatio"
	OptionNumberOfImages OptionKey = "numberOfImages"
	OptionNegativePrompt OptionKey = "negativePrompt"
	OptionEnhancePrompt  OptionKey = "enhancePrompt"
	OptionSize           OptionKey = "size"
)

// OptionKeys は全オプションキーを定義順で返します。
func OptionKeys() []OptionKey {
	return []OptionKey{OptionAspectRatio, OptionNumberOfImages, OptionNegativePrompt, OptionEnhancePrompt, OptionSize}
}

// GenerationOptions は1回の生成リクエストに適用されるオプションです。
// 値オブジェクトとして扱い、変更は With で新しい値を作って行います。
type GenerationOptions struct {
	AspectRatio    AspectRatio `json:"aspectRatio" yaml:"aspect_ratio"`
	NumberOfImages int         `json:"numberOfImages" yaml:"number_of_images"`
	NegativePrompt string      `json:"negativePrompt" yaml:"negative_prompt"`
	EnhancePrompt  bool        `json:"enhancePrompt" yaml:"enhance_prompt"`
	Size           Size        `json:"size,omitempty" yaml:"size"`
}

// DefaultOptions は既定のオプションを毎回新しい値として返します。
func DefaultOptions() GenerationOptions {
	return GenerationOptions{
		AspectRatio:    AspectRatioSquare,
		NumberOfImages: 1,
		NegativePrompt: "",
		EnhancePrompt:  true,
		Size:           SizeMedium,
	}
}

// Validate は全フィールドが定義域内にあるか検証します。
func (o GenerationOptions) Validate() error {
	if !o.AspectRatio.Valid() {
		return fmt.Errorf("%w: aspectRatio %q", ErrInvalidOption, o.AspectRatio)
	}
	if o.NumberOfImages < MinImages || o.NumberOfImages > MaxImages {
		return fmt.Errorf("%w: numberOfImages %d", ErrInvalidOption, o.NumberOfImages)
	}
	if !o.Size.Valid() {
		return fmt.Errorf("%w: size %q", ErrInvalidOption, o.Size)
	}
	return nil
}

// With は key で指定したフィールドだけを value に置き換えたコピーを返します。
// 他のフィールドは元の値を保持します。型または定義域が合わない場合は
// ErrInvalidOption を返し、元の値をそのまま返します。
func (o GenerationOptions) With(key OptionKey, value any) (GenerationOptions, error) {
	next := o
	switch key {
	case OptionAspectRatio:
		v, ok := asAspectRatio(value)
		if !ok || !v.Valid() {
			return o, invalidValue(key, value)
		}
		next.AspectRatio = v
	case OptionNumberOfImages:
		v, ok := value.(int)
		if !ok || v < MinImages || v > MaxImages {
			return o, invalidValue(key, value)
		}
		next.NumberOfImages = v
	case OptionNegativePrompt:
		v, ok := value.(string)
		if !ok {
			return o, invalidValue(key, value)
		}
		next.NegativePrompt = v
	case OptionEnhancePrompt:
		v, ok := value.(bool)
		if !ok {
			return o, invalidValue(key, value)
		}
		next.EnhancePrompt = v
	case OptionSize:
		v, ok := asSize(value)
		if !ok || !v.Valid() {
			return o, invalidValue(key, value)
		}
		next.Size = v
	default:
		return o, fmt.Errorf("%w: unknown key %q", ErrInvalidOption, key)
	}
	return next, nil
}

func invalidValue(key OptionKey, value any) error {
	return fmt.Errorf("%w: %s=%v (%T)", ErrInvalidOption, key, value, value)
}

// UI の選択肢は文字列で届くことが多いため、素の string も受け付ける。
func asAspectRatio(value any) (AspectRatio, bool) {
	switch v := value.(type) {
	case AspectRatio:
		return v, true
	case string:
		return AspectRatio(v), true
	}
	return "", false
}

func asSize(value any) (Size, bool) {
	switch v := value.(type) {
	case Size:
		return v, true
	case string:
		return Size(v), true
	}
	return "", false
}

// Option は選択肢の値と表示ラベルの組です。
type Option[T comparable] struct {
	Value T
	Label string
}

// AspectRatioOptions はアスペクト比の選択肢を表示順で返します。
func AspectRatioOptions() []Option[AspectRatio] {
	return []Option[AspectRatio]{
		{Value: AspectRatioSquare, Label: "Square (1:1)"},
		{Value: AspectRatioLandscape, Label: "Landscape (16:9)"},
		{Value: AspectRatioStandard, Label: "Standard (4:3)"},
		{Value: AspectRatioClassic, Label: "Classic (3:2)"},
	}
}

// ImageCountOptions は生成枚数の選択肢を返します。
func ImageCountOptions() []Option[int] {
	opts := make([]Option[int], 0, MaxImages)
	for n := MinImages; n <= MaxImages; n++ {
		opts = append(opts, Option[int]{Value: n, Label: fmt.Sprintf("%d", n)})
	}
	return opts
}

// SizeOptions は画像サイズの選択肢を返します。
func SizeOptions() []Option[Size] {
	return []Option[Size]{
		{Value: SizeSmall, Label: "Small"},
		{Value: SizeMedium, Label: "Medium"},
		{Value: SizeLarge, Label: "Large"},
		{Value: SizeExtraLarge, Label: "Extra Large"},
	}
}
