package generator

import (
	"time"
)

// DefaultTimeout は1回の生成リクエストに適用する既定のタイムアウトです。
const DefaultTimeout = 120 * time.Second

// State は生成結果のライフサイクル上の状態です。
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	}
	return "unknown"
}

// Result はセッションが保持する最新の生成結果です。
// Images は StateSuccess のとき、Message は StateFailure のときだけ意味を持ちます。
type Result struct {
	State   State
	Images  []string
	Message string
}

func loadingResult() Result { return Result{State: StateLoading} }

func successResult(images []string) Result {
	return Result{State: StateSuccess, Images: append([]string(nil), images...)}
}

func failureResult(message string) Result {
	if message == "" {
		message = FallbackFailureMessage
	}
	return Result{State: StateFailure, Message: message}
}

// clone は呼び出し元が Images を書き換えてもセッションに影響しないようコピーを返します。
func (r Result) clone() Result {
	if r.Images != nil {
		r.Images = append([]string(nil), r.Images...)
	}
	return r
}
