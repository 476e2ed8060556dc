package compilerd

import (
	"context"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestTokenBucketAllow(t *testing.T) {
	bucket := newTokenBucket(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})

	for i := 0; i < 5; i++ {
		if !bucket.allow() {
			t.Errorf("Request %d should be allowed (within burst)", i)
		}
	}
	if bucket.allow() {
		t.Error("Request 6 should be denied (burst exhausted)")
	}

	requests, denied := bucket.counts()
	if requests != 6 || denied != 1 {
		t.Errorf("counts = (%d, %d), want (6, 1)", requests, denied)
	}
}

func TestTokenBucketRefill(t *testing.T) {
	bucket := newTokenBucket(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 1})

	if !bucket.allow() {
		t.Error("First request should be allowed")
	}
	if bucket.allow() {
		t.Error("Second request should be denied")
	}

	// 100/sec refills one token in 10ms
	time.Sleep(15 * time.Millisecond)

	if !bucket.allow() {
		t.Error("Request after refill should be allowed")
	}
}

func TestRateLimiterUnknownMethod(t *testing.T) {
	rl := NewRateLimiter(nil)
	for i := 0; i < 5000; i++ {
		if !rl.Allow("/unknown/Method") {
			t.Fatalf("request %d to an unlimited method was denied", i)
		}
	}
	if rl.Denied("/unknown/Method") != 0 {
		t.Error("unlimited method should report no denials")
	}
}

func TestRateLimiterOverrides(t *testing.T) {
	rl := NewRateLimiter(map[string]RateLimitConfig{
		MethodGenerate: {RequestsPerSecond: 0.001, BurstSize: 2},
	})

	if !rl.Allow(MethodGenerate) || !rl.Allow(MethodGenerate) {
		t.Fatal("burst requests should be allowed")
	}
	if rl.Allow(MethodGenerate) {
		t.Error("third request should be denied")
	}
	if got := rl.Denied(MethodGenerate); got != 1 {
		t.Errorf("Denied = %d, want 1", got)
	}
	if !rl.Allow(MethodFormat) {
		t.Error("other methods keep their default limits")
	}
}

func TestRateLimiterConcurrent(t *testing.T) {
	rl := NewRateLimiter(map[string]RateLimitConfig{
		"/test/method": {RequestsPerSecond: 0.001, BurstSize: 100},
	})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("/test/method") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 100 {
		t.Errorf("allowed = %d, want 100", allowed)
	}
}

func TestUnaryServerInterceptor(t *testing.T) {
	rl := NewRateLimiter(map[string]RateLimitConfig{
		"/test/method": {RequestsPerSecond: 0.001, BurstSize: 2},
	})
	interceptor := rl.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/test/method"}
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	for i := 0; i < 2; i++ {
		if _, err := interceptor(context.Background(), nil, info, handler); err != nil {
			t.Errorf("Request %d should succeed: %v", i+1, err)
		}
	}

	_, err := interceptor(context.Background(), nil, info, handler)
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", err)
	}
}

func TestDefaultRateLimitsCoverEveryMethod(t *testing.T) {
	for _, method := range []string{MethodPing, MethodFormat, MethodBind, MethodCheckUsage, MethodGenerate} {
		cfg, ok := DefaultRateLimits[method]
		if !ok {
			t.Errorf("no default limit for %s", method)
			continue
		}
		if cfg.RequestsPerSecond <= 0 || cfg.BurstSize <= 0 {
			t.Errorf("limit for %s is not positive: %+v", method, cfg)
		}
	}
}
