// Package config は画像生成ツールの設定を読み込みます。
//
// 優先順位は 既定値 → YAML ファイル → 環境変数 (IMAGEGEN_*) です。
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/image-gen-source/pkg/domain"
	"github.com/shouni/image-gen-source/pkg/generator"
	"github.com/shouni/image-gen-source/pkg/imgutil"
)

// 利用できるバックエンド
const (
	BackendImagen = "imagen"
	BackendGemini = "gemini"
)

// Config は CLI と開発用サーバーが共有する設定です。
type Config struct {
	// Endpoint は生成リクエストの送信先です。クライアントでは必須です。
	Endpoint string        `yaml:"endpoint" env:"ENDPOINT"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// AllowPrivateEndpoint はループバックやプライベートアドレスへの送信を許可します。
	// 既定では SSRF 対策としてこれらの宛先を拒否します。
	AllowPrivateEndpoint bool `yaml:"allow_private_endpoint" env:"ALLOW_PRIVATE_ENDPOINT"`

	Defaults DefaultsConfig `yaml:"defaults" env:"DEFAULTS"`
	Log      LogConfig      `yaml:"log" env:"LOG"`
	Output   OutputConfig   `yaml:"output" env:"OUTPUT"`
	Server   ServerConfig   `yaml:"server" env:"SERVER"`
}

// DefaultsConfig は新しいセッションの初期オプションです。
type DefaultsConfig struct {
	AspectRatio    string `yaml:"aspect_ratio" env:"ASPECT_RATIO"`
	NumberOfImages int    `yaml:"number_of_images" env:"NUMBER_OF_IMAGES"`
	NegativePrompt string `yaml:"negative_prompt" env:"NEGATIVE_PROMPT"`
	EnhancePrompt  bool   `yaml:"enhance_prompt" env:"ENHANCE_PROMPT"`
	Size           string `yaml:"size" env:"SIZE"`
}

// LogConfig はログ出力の設定です。
type LogConfig struct {
	// debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// text, json
	Format string `yaml:"format" env:"FORMAT"`
}

// OutputConfig は選択した画像の保存先です。
type OutputConfig struct {
	Dir         string `yaml:"dir" env:"DIR"`
	JPEGQuality int    `yaml:"jpeg_quality" env:"JPEG_QUALITY"`
}

// ServerConfig は開発用エンドポイントサーバーの設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	Model      string `yaml:"model" env:"MODEL"`
	// imagen, gemini
	Backend string `yaml:"backend" env:"BACKEND"`
	APIKey  string `yaml:"api_key" env:"API_KEY"`
	// 毎秒のリクエスト上限。0 なら制限しない
	RateLimit float64 `yaml:"rate_limit" env:"RATE_LIMIT"`
	RateBurst int     `yaml:"rate_burst" env:"RATE_BURST"`
	// 生成結果を共有する Redis のアドレス。空ならキャッシュしない
	CacheAddr string        `yaml:"cache_addr" env:"CACHE_ADDR"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
}

// DefaultConfig は既定値を持つ Config を返します。
func DefaultConfig() *Config {
	opts := domain.DefaultOptions()
	return &Config{
		Timeout: generator.DefaultTimeout,
		Defaults: DefaultsConfig{
			AspectRatio:    opts.AspectRatio.String(),
			NumberOfImages: opts.NumberOfImages,
			NegativePrompt: opts.NegativePrompt,
			EnhancePrompt:  opts.EnhancePrompt,
			Size:           opts.Size.String(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Dir:         ".",
			JPEGQuality: imgutil.DefaultJPEGQuality,
		},
		Server: ServerConfig{
			ListenAddr: ":8080",
			Backend:    BackendImagen,
			RateBurst:  1,
			CacheTTL:   10 * time.Minute,
		},
	}
}

// GenerationOptions は Defaults をドメインのオプションに変換して検証します。
func (c *Config) GenerationOptions() (domain.GenerationOptions, error) {
	opts := domain.GenerationOptions{
		AspectRatio:    domain.AspectRatio(c.Defaults.AspectRatio),
		NumberOfImages: c.Defaults.NumberOfImages,
		NegativePrompt: c.Defaults.NegativePrompt,
		EnhancePrompt:  c.Defaults.EnhancePrompt,
		Size:           domain.Size(c.Defaults.Size),
	}
	if err := opts.Validate(); err != nil {
		return domain.GenerationOptions{}, &generator.ConfigurationError{Field: "defaults", Err: err}
	}
	return opts, nil
}

// Validate はクライアントとして起動するための設定を検証します。
// エンドポイントが未設定なら ConfigurationError を返します。
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return generator.NewMissingEndpointError()
	}
	if c.Timeout < 0 {
		return &generator.ConfigurationError{Field: "timeout", Err: fmt.Errorf("must not be negative: %s", c.Timeout)}
	}
	if _, err := c.GenerationOptions(); err != nil {
		return err
	}
	return c.validateLog()
}

// ValidateServer は開発用サーバーとして起動するための設定を検証します。
func (c *Config) ValidateServer() error {
	switch c.Server.Backend {
	case BackendImagen, BackendGemini:
	default:
		return &generator.ConfigurationError{Field: "server.backend", Err: fmt.Errorf("unsupported backend %q", c.Server.Backend)}
	}
	if c.Server.APIKey == "" {
		return &generator.ConfigurationError{Field: "server.api_key", Err: fmt.Errorf("api key is required")}
	}
	if c.Server.RateLimit < 0 {
		return &generator.ConfigurationError{Field: "server.rate_limit", Err: fmt.Errorf("must not be negative: %v", c.Server.RateLimit)}
	}
	if c.Server.ListenAddr == "" {
		return &generator.ConfigurationError{Field: "server.listen_addr", Err: fmt.Errorf("listen address is required")}
	}
	return c.validateLog()
}

func (c *Config) validateLog() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return &generator.ConfigurationError{Field: "log.level", Err: err}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return &generator.ConfigurationError{Field: "log.format", Err: fmt.Errorf("unsupported format %q", c.Log.Format)}
	}
	return nil
}

// SlogLevel は Level を slog.Level に変換します。
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
