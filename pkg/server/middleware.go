package server

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimit は limiter を超えたリクエストを 429 で拒否します。
func (r *Router) rateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if r.limiter != nil && !r.limiter.Allow() {
			r.logger.WarnContext(req.Context(), "リクエストを制限しました", "path", req.URL.Path)
			r.metrics.observeStatus(http.StatusTooManyRequests)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, req)
	}
}

// WithRateLimit は /generate への流量を毎秒 rps 件、バースト burst 件に制限します。
// rps が 0 以下なら制限しません。
func WithRateLimit(rps float64, burst int) Option {
	return func(r *Router) {
		if rps <= 0 {
			r.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}
