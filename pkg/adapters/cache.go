package adapters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shouni/image-gen-source/pkg/domain"
)

// DefaultCacheTTL はキャッシュの既定の有効期間です。
const DefaultCacheTTL = 10 * time.Minute

const cacheKeyPrefix = "imagegen:images:"

// ImageBackend は画像を生成するバックエンドです。ImagenBackend と GeminiBackend が満たします。
type ImageBackend interface {
	Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.ImageResponse, error)
	Model() string
}

// ImageCacher は生成済み画像のキャッシュ操作を抽象化するインターフェースです。
type ImageCacher interface {
	Get(ctx context.Context, key string) ([]domain.ImageResponse, bool)
	Set(ctx context.Context, key string, images []domain.ImageResponse, ttl time.Duration)
}

// RedisCache は Redis を使った ImageCacher です。
// 読み書きに失敗してもキャッシュなしとして扱い、生成は止めません。
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache は接続を確認して RedisCache を初期化します。
func NewRedisCache(ctx context.Context, client *redis.Client) (*RedisCache, error) {
	if client == nil {
		return nil, fmt.Errorf("client (*redis.Client) is required")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redisへの接続に失敗しました: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Get はキャッシュから画像を取り出します。
func (c *RedisCache) Get(ctx context.Context, key string) ([]domain.ImageResponse, bool) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "キャッシュの取得に失敗しました", "key", key, "error", err)
		}
		return nil, false
	}

	var images []domain.ImageResponse
	if err := json.Unmarshal(data, &images); err != nil {
		slog.WarnContext(ctx, "キャッシュデータが不正です", "key", key, "error", err)
		return nil, false
	}
	return images, true
}

// Set は画像をキャッシュに保存します。
func (c *RedisCache) Set(ctx context.Context, key string, images []domain.ImageResponse, ttl time.Duration) {
	data, err := json.Marshal(images)
	if err != nil {
		slog.WarnContext(ctx, "キャッシュデータの変換に失敗しました", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+key, data, ttl).Err(); err != nil {
		slog.WarnContext(ctx, "キャッシュの保存に失敗しました", "key", key, "error", err)
	}
}

// CachedBackend は同じリクエストの生成結果を一定時間再利用するバックエンドです。
type CachedBackend struct {
	backend ImageBackend
	cache   ImageCacher
	ttl     time.Duration
}

// NewCachedBackend は依存関係を注入して CachedBackend を初期化します。
func NewCachedBackend(backend ImageBackend, cache ImageCacher, ttl time.Duration) (*CachedBackend, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend (ImageBackend) is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache (ImageCacher) is required")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedBackend{backend: backend, cache: cache, ttl: ttl}, nil
}

// Model は内側のバックエンドのモデル名を返します。
func (b *CachedBackend) Model() string { return b.backend.Model() }

// Generate はキャッシュにあればそれを返し、なければ生成して保存します。
func (b *CachedBackend) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.ImageResponse, error) {
	key := cacheKey(b.backend.Model(), req)
	if images, ok := b.cache.Get(ctx, key); ok {
		slog.DebugContext(ctx, "キャッシュから画像を返します", "key", key, "images", len(images))
		return images, nil
	}

	images, err := b.backend.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		b.cache.Set(ctx, key, images, b.ttl)
	}
	return images, nil
}

// cacheKey はモデルとリクエスト全体から決まるキーを返します。
func cacheKey(model string, req domain.GenerationRequest) string {
	data, _ := json.Marshal(struct {
		Model   string                   `json:"model"`
		Request domain.GenerationRequest `json:"request"`
	}{model, req})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
