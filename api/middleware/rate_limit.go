package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// RateLimitPolicy throttles one traffic surface per client IP.
type RateLimitPolicy struct {
	Name   string
	Window time.Duration
	Limit  int
}

func (p RateLimitPolicy) enabled() bool {
	return p.Window > 0 && p.Limit > 0
}

// RateLimit enforces a fixed-window counter per client IP. A limiter outage
// fails open so coupon checks never block checkout.
func RateLimit(policy RateLimitPolicy, limiter pkgredis.RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			window, err := limiter.FixedWindow(ctx, policy.Name+":"+ip, int64(policy.Limit), policy.Window)
			if err != nil {
				logError(ctx, logg, "rate_limit.unavailable", err)
				next.ServeHTTP(w, r)
				return
			}
			if !window.Allowed {
				retry := retryAfterSeconds(window.RetryAfter, policy.Window)
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":      policy.Name,
						"ip":          ip,
						"attempts":    window.Count,
						"limit":       policy.Limit,
						"retry_after": retry,
					}), "rate_limit.blocked")
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds rounds up so clients never retry inside the window.
func retryAfterSeconds(remaining, window time.Duration) int {
	if remaining <= 0 {
		remaining = window
	}
	return max(1, int(math.Ceil(remaining.Seconds())))
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
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
