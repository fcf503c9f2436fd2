package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dunamismax/pixelpress/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter spends cost tokens from a subject's budget.
type RateLimiter interface {
	Take(ctx context.Context, subject string, cost int64) (ratelimit.Decision, error)
}

// withRateLimit guards the upload route only. Limiter errors let the request
// through; a Redis outage must not take uploads down with it.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != s.uploadPath {
			next.ServeHTTP(w, r)
			return
		}

		subject := s.rateLimitSubject(r)
		cost := uploadCost(r.ContentLength, s.rateLimitBytesPerToken)
		decision, err := s.rateLimiter.Take(r.Context(), subject, cost)
		if err != nil {
			s.logger.Warn("rate limiter check failed",
				zap.String("request_id", requestIDFrom(r.Context())),
				zap.String("subject", subject),
				zap.Error(err),
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		if decision.Allowed {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := max(int(decision.RetryAfter.Round(time.Second).Seconds()), 1)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		s.metrics.rateLimitRejected.WithLabelValues(s.uploadPath).Inc()
		s.logger.Info("upload rate limited",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("subject", subject),
			zap.Int64("cost", cost),
			zap.Int("retry_after_s", retryAfter),
		)
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
	})
}

func (s *Server) rateLimitSubject(r *http.Request) string {
	subject := strings.TrimSpace(r.Header.Get(s.rateLimitUserIDHeader))
	if subject == "" {
		subject = "anonymous"
	}
	return subject + ":" + s.uploadPath
}

// uploadCost charges one token per request, plus one per started
// bytesPerToken of declared body when weighting is on.
func uploadCost(contentLength, bytesPerToken int64) int64 {
	if bytesPerToken <= 0 || contentLength <= 0 {
		return 1
	}
	return 1 + contentLength/bytesPerToken
}
