// imagegen-server は生成エンドポイントの契約を満たす開発用サーバーです。
//
// 使い方:
//
//	IMAGEGEN_SERVER_API_KEY=... imagegen-server -config config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/image-gen-source/internal/config"
	"github.com/shouni/image-gen-source/pkg/adapters"
	"github.com/shouni/image-gen-source/pkg/server"
	"google.golang.org/genai"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "設定ファイル (YAML) のパス")
	flag.Parse()

	cfg, err := config.NewLoader().WithConfigPath(*configPath).Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := newBackend(ctx, cfg.Server)
	if err != nil {
		return err
	}
	if cfg.Server.CacheAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Server.CacheAddr})
		defer rdb.Close()

		cache, err := adapters.NewRedisCache(ctx, rdb)
		if err != nil {
			return err
		}
		if backend, err = adapters.NewCachedBackend(backend, cache, cfg.Server.CacheTTL); err != nil {
			return err
		}
		logger.Info("生成結果をキャッシュします", "addr", cfg.Server.CacheAddr, "ttl", cfg.Server.CacheTTL)
	}

	router, err := server.NewRouter(backend,
		server.WithLogger(logger),
		server.WithEnhancePrompt(cfg.Defaults.EnhancePrompt),
		server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Timeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("サーバーを起動します", "addr", cfg.Server.ListenAddr, "backend", cfg.Server.Backend, "model", backend.Model())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("サーバーを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newBackend は設定に応じて Imagen か Gemini のバックエンドを作成します。
func newBackend(ctx context.Context, cfg config.ServerConfig) (server.Backend, error) {
	switch cfg.Backend {
	case config.BackendGemini:
		aiClient, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.APIKey})
		if err != nil {
			return nil, fmt.Errorf("Geminiクライアントの初期化に失敗しました: %w", err)
		}
		b, err := adapters.NewGeminiBackend(aiClient, cfg.Model)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("genaiクライアントの初期化に失敗しました: %w", err)
		}
		b, err := adapters.NewImagenBackend(client.Models, cfg.Model)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}
