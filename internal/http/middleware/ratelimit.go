package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/anuragpatel/minisocial-service/internal/ratelimit"
	"github.com/anuragpatel/minisocial-service/internal/utils/response"
)

// Per-user write limits. Reads are not limited.
const (
	ActionPosts = "posts" // POST /post: 20/min
	ActionLikes = "likes" // POST /like/{id}: 60/min
)

type RateLimitConfig struct {
	limiters map[string]*ratelimit.Bucket
}

func NewRateLimitConfig(redisClient *redis.Client) *RateLimitConfig {
	return &RateLimitConfig{
		limiters: map[string]*ratelimit.Bucket{
			ActionPosts: ratelimit.NewBucket(redisClient, 20, 20),
			ActionLikes: ratelimit.NewBucket(redisClient, 60, 60),
		},
	}
}

// RateLimit gates an action per authenticated user. The auth middleware must
// run first so the identity is present on the context.
func (rlc *RateLimitConfig) RateLimit(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("user not authenticated")))
				return
			}

			limiter, exists := rlc.limiters[action]
			if !exists {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.Allow(r.Context(), id.UserID, action)
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
					fmt.Errorf("rate limit check failed: %w", err)))
				return
			}

			remaining, _ := limiter.Remaining(r.Context(), id.UserID, action)
			w.Header().Set("X-RateLimit-Limit", limitForAction(action))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", "60")

			if !allowed {
				response.WriteJSON(w, http.StatusTooManyRequests, response.GeneralError(
					errors.New("rate limit exceeded")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func limitForAction(action string) string {
	switch action {
	case ActionPosts:
		return "20"
	case ActionLikes:
		return "60"
	default:
		return "100"
	}
}
