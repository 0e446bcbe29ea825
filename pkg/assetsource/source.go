package assetsource

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/image-gen-source/pkg/adapters"
	"github.com/shouni/image-gen-source/pkg/domain"
	"github.com/shouni/image-gen-source/pkg/generator"
)

const (
	// Name はホストに登録するアセットソースの識別子です。
	Name = "image-gen"
	// Title はホストの選択メニューに表示する名前です。
	Title = "Generate Image"
)

// SelectFunc は選択された画像を受け取るホスト側のコールバックです。
type SelectFunc func(assets []domain.SelectedAsset)

// Config はアセットソースの構築時設定です。
type Config struct {
	// Endpoint は生成リクエストの送信先です。必須です。
	Endpoint string
	// HTTPClient は Endpoint への送信に使います。nil なら adapters.HTTPPoster を使います。
	HTTPClient adapters.JSONPoster
	// AllowPrivateEndpoint は既定の HTTPClient でループバックやプライベートアドレスへの送信を許可します。
	AllowPrivateEndpoint bool
	// Requester を指定すると HTTPClient の代わりに使います。
	Requester generator.ImageRequester

	// Defaults は新しいセッションの初期オプションです。nil なら domain.DefaultOptions() です。
	Defaults *domain.GenerationOptions
	Timeout  time.Duration
	Logger   *slog.Logger

	OnSelect SelectFunc
	OnClose  func()
}

// Source は画像生成をホストのアセット選択に組み込むアダプターです。
type Source struct {
	requester generator.ImageRequester
	defaults  domain.GenerationOptions
	timeout   time.Duration
	logger    *slog.Logger
	onSelect  SelectFunc
	onClose   func()
}

// New は設定を検証して Source を初期化します。
// エンドポイントが未設定の場合は generator.ConfigurationError を返し、リトライはできません。
func New(cfg Config) (*Source, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = generator.DefaultTimeout
	}

	requester := cfg.Requester
	if requester == nil {
		httpClient := cfg.HTTPClient
		if httpClient == nil {
			httpClient = adapters.NewDefaultHTTPPoster(timeout, cfg.AllowPrivateEndpoint)
		}
		client, err := adapters.NewEndpointClient(cfg.Endpoint, httpClient)
		if err != nil {
			return nil, fmt.Errorf("アセットソースの初期化に失敗しました: %w", err)
		}
		requester = client
	} else if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, generator.NewMissingEndpointError()
	}

	defaults := domain.DefaultOptions()
	if cfg.Defaults != nil {
		defaults = *cfg.Defaults
	}
	if err := defaults.Validate(); err != nil {
		return nil, &generator.ConfigurationError{Field: "defaults", Err: err}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Source{
		requester: requester,
		defaults:  defaults,
		timeout:   timeout,
		logger:    logger,
		onSelect:  cfg.OnSelect,
		onClose:   cfg.OnClose,
	}, nil
}

// Name はアセットソースの識別子を返します。
func (s *Source) Name() string { return Name }

// Title は表示名を返します。
func (s *Source) Title() string { return Title }

// NewSession はダイアログを開くたびに使う新しい生成セッションを作ります。
func (s *Source) NewSession() (*generator.Session, error) {
	return generator.NewSession(s.requester,
		generator.WithDefaultOptions(s.defaults),
		generator.WithTimeout(s.timeout),
		generator.WithLogger(s.logger),
	)
}

// Select はセッションのプロンプトで画像を記述子にし、ホストへ1件の配列として渡します。
func (s *Source) Select(session *generator.Session, image string) domain.SelectedAsset {
	asset := session.SelectImage(image)
	if s.onSelect != nil {
		s.onSelect([]domain.SelectedAsset{asset})
	}
	s.logger.Debug("画像が選択されました", "source", Name, "title", asset.Metadata.Title)
	return asset
}

// Close はホストに選択の中止を通知します。
func (s *Source) Close() {
	if s.onClose != nil {
		s.onClose()
	}
}
