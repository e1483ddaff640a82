package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
)

// Handler enforces a per-client request budget before delegating to the
// next handler. Limiter errors fail open: a broken Redis must not take the
// storefront down with it.
type Handler struct {
	Limiter *limiter.Limiter
	Key     func(*http.Request) string
	Logger  zerolog.Logger
}

// Middleware implements the http.Handler middleware interface.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Limiter == nil || h.Key == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lctx, err := h.Limiter.Get(r.Context(), h.Key(r))
		if err != nil {
			h.Logger.Error().Err(err).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
