package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Bucket is a per-user, per-action token bucket backed by Redis.
type Bucket struct {
	redis    *redis.Client
	capacity int64
	refill   int64 // tokens refilled per window
	window   time.Duration
}

func NewBucket(redisClient *redis.Client, capacity, refillRate int64) *Bucket {
	return &Bucket{
		redis:    redisClient,
		capacity: capacity,
		refill:   refillRate,
		window:   time.Minute,
	}
}

// The bucket state lives in a Redis hash and is refilled lazily on access.
// The Lua script keeps check-and-consume atomic across concurrent requests.
const consumeScript = `
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local refill_rate = tonumber(ARGV[2])
	local window = tonumber(ARGV[3])
	local now = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local tokens = tonumber(bucket[1]) or capacity
	local last_refill = tonumber(bucket[2]) or now

	local elapsed = now - last_refill
	local refilled = math.floor((elapsed / window) * refill_rate)

	if refilled > 0 then
		tokens = math.min(capacity, tokens + refilled)
		last_refill = now
	end

	local allowed = 0
	if tokens > 0 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill', last_refill)
	redis.call('EXPIRE', key, window * 2)
	return allowed
`

const remainingScript = `
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local refill_rate = tonumber(ARGV[2])
	local window = tonumber(ARGV[3])
	local now = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local tokens = tonumber(bucket[1]) or capacity
	local last_refill = tonumber(bucket[2]) or now

	local elapsed = now - last_refill
	local refilled = math.floor((elapsed / window) * refill_rate)

	if refilled > 0 then
		tokens = math.min(capacity, tokens + refilled)
	end

	return tokens
`

func (b *Bucket) key(userID, action string) string {
	return fmt.Sprintf("rate_limit:%s:%s", userID, action)
}

// Allow consumes one token for the user's action, reporting whether the
// request may proceed.
func (b *Bucket) Allow(ctx context.Context, userID, action string) (bool, error) {
	result, err := b.redis.Eval(ctx, consumeScript, []string{b.key(userID, action)},
		b.capacity, b.refill, int64(b.window.Seconds()), time.Now().Unix()).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from rate limit script")
	}

	return allowed == 1, nil
}

// Remaining returns the number of tokens left for the user's action.
func (b *Bucket) Remaining(ctx context.Context, userID, action string) (int64, error) {
	result, err := b.redis.Eval(ctx, remainingScript, []string{b.key(userID, action)},
		b.capacity, b.refill, int64(b.window.Seconds()), time.Now().Unix()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get remaining tokens: %w", err)
	}

	remaining, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected result type from remaining tokens script")
	}

	return remaining, nil
}

// Reset clears the bucket for a specific user action.
func (b *Bucket) Reset(ctx context.Context, userID, action string) error {
	return b.redis.Del(ctx, b.key(userID, action)).Err()
}
