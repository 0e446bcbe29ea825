package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shouni/image-gen-source/pkg/domain"
)

// Session はプロンプトと生成オプションを保持し、画像生成の1往復とその状態を管理します。
// 所有者は1人、同時に有効なリクエストは1つという前提で使います。
// 新しい Generate を開始すると、それ以前のリクエストの結果は破棄されます。
type Session struct {
	requester ImageRequester
	logger    *slog.Logger
	timeout   time.Duration

	mu           sync.Mutex
	prompt       string
	options      domain.GenerationOptions
	result       Result
	resultPrompt string // result を生成したときのプロンプト
	token        uint64
	cancel       context.CancelFunc
}

// SessionOption は Session の構築オプションです。
type SessionOption func(*Session)

// WithDefaultOptions はセッション開始時の生成オプションを指定します。
func WithDefaultOptions(opts domain.GenerationOptions) SessionOption {
	return func(s *Session) { s.options = opts }
}

// WithTimeout は1回の生成リクエストのタイムアウトを指定します。0 以下なら無制限です。
func WithTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.timeout = d }
}

// WithLogger はログ出力先を指定します。
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession は依存関係を注入して Session を初期化します。
func NewSession(requester ImageRequester, opts ...SessionOption) (*Session, error) {
	if requester == nil {
		return nil, fmt.Errorf("requester (ImageRequester) is required")
	}

	s := &Session{
		requester: requester,
		logger:    slog.Default(),
		timeout:   DefaultTimeout,
		options:   domain.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.options.Validate(); err != nil {
		return nil, fmt.Errorf("既定の生成オプションが不正です: %w", err)
	}
	return s, nil
}

// SetPrompt はプロンプトを入力されたまま保存します。
// 失敗状態はクリアしますが、成功した結果は残します。
func (s *Session) SetPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompt = text
	if s.result.State == StateFailure {
		s.result = Result{}
	}
}

// SetOption は key で指定した1つのオプションだけを置き換えます。
func (s *Session) SetOption(key domain.OptionKey, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.options.With(key, value)
	if err != nil {
		return err
	}
	s.options = next
	return nil
}

// Prompt は現在のプロンプトを返します。
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

// Options は現在の生成オプションを返します。
func (s *Session) Options() domain.GenerationOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

// Result は最新の生成結果のコピーを返します。
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.clone()
}

// Generate は現在のプロンプトとオプションで画像生成を1回実行します。
//
// プロンプトが空白のみの場合は通信せずに ValidationError を返し、状態は変えません。
// それ以外は Loading に遷移してからエンドポイントを呼び出し、結果に応じて
// Success か Failure に遷移します。実行中に別の Generate が開始された場合、
// この呼び出しの結果は破棄され、ErrSuperseded とその時点の結果を返します。
func (s *Session) Generate(ctx context.Context) (Result, error) {
	s.mu.Lock()
	req := domain.GenerationRequest{Prompt: s.prompt, Options: s.options}
	if !req.HasPrompt() {
		current := s.result.clone()
		s.mu.Unlock()
		return current, &ValidationError{Err: ErrEmptyPrompt}
	}

	// 前のリクエストは結果を使わないので通信も打ち切る
	if s.cancel != nil {
		s.cancel()
	}
	s.token++
	token := s.token

	callCtx, cancel := s.requestContext(ctx)
	s.cancel = cancel
	s.result = loadingResult()
	s.mu.Unlock()
	defer cancel()

	s.logger.InfoContext(ctx, "画像生成をリクエストします",
		"token", token,
		"aspect_ratio", req.Options.AspectRatio,
		"number_of_images", req.Options.NumberOfImages,
		"size", req.Options.Size,
	)

	resp, err := s.requester.RequestImages(callCtx, req)
	next, outcome := resolveOutcome(resp, err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		s.logger.DebugContext(ctx, "古いリクエストの結果を破棄しました", "token", token, "current", s.token)
		return s.result.clone(), ErrSuperseded
	}

	s.cancel = nil
	s.result = next
	s.resultPrompt = req.Prompt
	if outcome != nil {
		s.logger.WarnContext(ctx, "画像生成に失敗しました", "token", token, "error", outcome)
	} else {
		s.logger.InfoContext(ctx, "画像生成が完了しました", "token", token, "images", len(next.Images))
	}
	return next.clone(), outcome
}

// SelectImage は成功結果の画像1枚からアセット記述子を作ります。
// 生成後に SetPrompt で書き換えても、画像を生成したときのプロンプトが使われます。
// 成功結果がない場合は現在のプロンプトを使います。
func (s *Session) SelectImage(image string) domain.SelectedAsset {
	s.mu.Lock()
	prompt := s.prompt
	if s.result.State == StateSuccess {
		prompt = s.resultPrompt
	}
	s.mu.Unlock()
	return SelectImage(image, prompt)
}

func (s *Session) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// resolveOutcome はエンドポイントの応答を次の Result と呼び出し元へ返すエラーに変換します。
func resolveOutcome(resp *domain.GenerateImageResponse, err error) (Result, error) {
	if err != nil {
		te := toTransportError(err)
		return failureResult(te.Error()), te
	}
	if resp == nil || len(resp.Images) == 0 {
		empty := &EmptyResultError{}
		return failureResult(empty.Error()), empty
	}
	return successResult(resp.Images), nil
}
