// imagegen はプロンプトから画像を生成し、選んだ1枚を保存するコマンドです。
//
// 使い方:
//
//	imagegen -config config.yaml -prompt "a cat on a sofa" -aspect 16:9 -n 2 -pick 2
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/image-gen-source/internal/config"
	"github.com/shouni/image-gen-source/pkg/assetsource"
	"github.com/shouni/image-gen-source/pkg/domain"
	"github.com/shouni/image-gen-source/pkg/generator"
)

type cliFlags struct {
	configPath string
	endpoint   string
	prompt     string
	aspect     string
	count      int
	size       string
	negative   string
	enhance    bool
	pick       int
	format     string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "設定ファイル (YAML) のパス")
	flag.StringVar(&f.endpoint, "endpoint", "", "生成エンドポイント (設定より優先)")
	flag.StringVar(&f.prompt, "prompt", "", "生成する画像の説明")
	flag.StringVar(&f.aspect, "aspect", "", "アスペクト比 (1:1, 16:9, 4:3, 3:2)")
	flag.IntVar(&f.count, "n", 0, "生成枚数 (1-4)")
	flag.StringVar(&f.size, "size", "", "サイズ (small, medium, large, extra-large)")
	flag.StringVar(&f.negative, "negative", "", "画像に含めたくない要素")
	flag.BoolVar(&f.enhance, "enhance", true, "プロンプトを補正する")
	flag.IntVar(&f.pick, "pick", 1, "保存する画像の番号 (1始まり)")
	flag.StringVar(&f.format, "format", "png", "保存形式 (png, jpeg)")
	flag.Parse()

	cfg, err := config.NewLoader().WithConfigPath(f.configPath).Load()
	if err != nil {
		return err
	}
	if f.endpoint != "" {
		cfg.Endpoint = f.endpoint
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if f.format != "png" && f.format != "jpeg" {
		return fmt.Errorf("unsupported format %q", f.format)
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	defaults, err := cfg.GenerationOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	writer, closeWriter, err := newOutputWriter(ctx, cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("保存先を初期化できませんでした: %w", err)
	}
	defer func() {
		if err := closeWriter(); err != nil {
			logger.Warn("保存先のクローズに失敗しました", "error", err)
		}
	}()

	var saved string
	source, err := assetsource.New(assetsource.Config{
		Endpoint:             cfg.Endpoint,
		AllowPrivateEndpoint: cfg.AllowPrivateEndpoint,
		Defaults:             &defaults,
		Timeout:              cfg.Timeout,
		Logger:               logger,
		OnSelect: func(assets []domain.SelectedAsset) {
			path, err := saveAsset(ctx, writer, cfg.Output.Dir, assets[0], f.format == "jpeg", cfg.Output.JPEGQuality)
			if err != nil {
				logger.Error("画像の保存に失敗しました", "error", err)
				return
			}
			saved = path
		},
	})
	if err != nil {
		return err
	}

	session, err := source.NewSession()
	if err != nil {
		return err
	}
	session.SetPrompt(f.prompt)
	if err := applyFlags(session, f); err != nil {
		return err
	}

	result, err := session.Generate(ctx)
	if err != nil {
		var ve *generator.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("プロンプトを入力してください: %w", err)
		}
		return fmt.Errorf("画像生成に失敗しました: %s", result.Message)
	}

	if f.pick < 1 || f.pick > len(result.Images) {
		return fmt.Errorf("-pick は 1 から %d の範囲で指定してください", len(result.Images))
	}
	source.Select(session, result.Images[f.pick-1])
	if saved == "" {
		return errors.New("画像を保存できませんでした")
	}

	fmt.Println(saved)
	return nil
}

// applyFlags は明示的に指定されたフラグだけをセッションのオプションに反映します。
func applyFlags(session *generator.Session, f cliFlags) error {
	var err error
	flag.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "aspect":
			err = session.SetOption(domain.OptionAspectRatio, f.aspect)
		case "n":
			err = session.SetOption(domain.OptionNumberOfImages, f.count)
		case "size":
			err = session.SetOption(domain.OptionSize, f.size)
		case "negative":
			err = session.SetOption(domain.OptionNegativePrompt, f.negative)
		case "enhance":
			err = session.SetOption(domain.OptionEnhancePrompt, f.enhance)
		}
	})
	return err
}
