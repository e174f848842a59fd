package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gravadormedico/voicepen-backend/api/responses"
	"github.com/gravadormedico/voicepen-backend/pkg/config"
	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

type windowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// LoginRateLimit throttles login attempts per client IP and per submitted
// email. Redis failures fail open: a login outage is worse than a burst.
func LoginRateLimit(cfg config.RateLimitConfig, limiter windowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || cfg.LoginWindow <= 0 || (cfg.LoginIPLimit <= 0 && cfg.LoginEmailLimit <= 0) {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cfg.LoginIPLimit > 0 {
				if ip := clientIP(r); ip != "" {
					if !admit(ctx, limiter, logg, "login:ip:"+ip, cfg.LoginIPLimit, cfg.LoginWindow) {
						rejectRateLimited(ctx, logg, w, "ip")
						return
					}
				}
			}

			if cfg.LoginEmailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeBadPayload, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := extractEmail(body); email != "" {
					if !admit(ctx, limiter, logg, "login:email:"+hashValue(email), cfg.LoginEmailLimit, cfg.LoginWindow) {
						rejectRateLimited(ctx, logg, w, "email")
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func admit(ctx context.Context, limiter windowLimiter, logg *logger.Logger, scope string, limit int, window time.Duration) bool {
	allowed, _, err := limiter.FixedWindowAllow(ctx, scope, int64(limit), window)
	if err != nil {
		if logg != nil {
			logg.WarnErr(ctx, "login.rate_limit.unavailable", err)
		}
		return true
	}
	return allowed
}

func rejectRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, scope string) {
	if logg != nil {
		logg.Warn(logg.WithField(ctx, "scope", scope), "login.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts"))
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
