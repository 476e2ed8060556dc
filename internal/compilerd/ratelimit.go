package compilerd

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RateLimitConfig defines the limit of one method.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustainable rate (tokens added per second).
	RequestsPerSecond float64

	// BurstSize is the maximum number of requests allowed in a burst.
	BurstSize int
}

// DefaultRateLimits apply when the daemon enables rate limiting.
var DefaultRateLimits = map[string]RateLimitConfig{
	// Code generation parses YAML and renders whole files
	MethodGenerate: {RequestsPerSecond: 20, BurstSize: 40},

	// Template operations are cheap
	MethodFormat:     {RequestsPerSecond: 500, BurstSize: 1000},
	MethodBind:       {RequestsPerSecond: 500, BurstSize: 1000},
	MethodCheckUsage: {RequestsPerSecond: 500, BurstSize: 1000},

	MethodPing: {RequestsPerSecond: 1000, BurstSize: 1000},
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
	ratePerSec float64
	maxTokens  float64
	requests   int64
	denied     int64
}

func newTokenBucket(cfg RateLimitConfig) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(cfg.BurstSize),
		lastUpdate: time.Now(),
		ratePerSec: cfg.RequestsPerSecond,
		maxTokens:  float64(cfg.BurstSize),
	}
}

func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.requests++

	now := time.Now()
	tb.tokens = min(tb.maxTokens, tb.tokens+now.Sub(tb.lastUpdate).Seconds()*tb.ratePerSec)
	tb.lastUpdate = now

	if tb.tokens >= 1.0 {
		tb.tokens--
		return true
	}

	tb.denied++
	return false
}

func (tb *tokenBucket) counts() (requests, denied int64) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.requests, tb.denied
}

// RateLimiter holds one token bucket per limited method.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	configs map[string]RateLimitConfig
}

// NewRateLimiter creates a limiter from DefaultRateLimits overridden by limits.
func NewRateLimiter(limits map[string]RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*tokenBucket),
		configs: make(map[string]RateLimitConfig, len(DefaultRateLimits)+len(limits)),
	}
	for method, cfg := range DefaultRateLimits {
		rl.configs[method] = cfg
	}
	for method, cfg := range limits {
		rl.configs[method] = cfg
	}
	return rl
}

// Allow consumes a token for method. Methods without a limit always pass.
func (rl *RateLimiter) Allow(method string) bool {
	bucket := rl.bucket(method)
	if bucket == nil {
		return true
	}
	return bucket.allow()
}

func (rl *RateLimiter) bucket(method string) *tokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if bucket, ok := rl.buckets[method]; ok {
		return bucket
	}
	cfg, ok := rl.configs[method]
	if !ok {
		return nil
	}
	bucket := newTokenBucket(cfg)
	rl.buckets[method] = bucket
	return bucket
}

// Denied returns how many calls to method were rejected.
func (rl *RateLimiter) Denied(method string) int64 {
	rl.mu.Lock()
	bucket, ok := rl.buckets[method]
	rl.mu.Unlock()
	if !ok {
		return 0
	}
	_, denied := bucket.counts()
	return denied
}

// UnaryServerInterceptor rejects calls over the limit with ResourceExhausted.
func (rl *RateLimiter) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !rl.Allow(info.FullMethod) {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded for method %s", info.FullMethod)
		}
		return handler(ctx, req)
	}
}
