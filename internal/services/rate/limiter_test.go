package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/irfndi/meets-match-sub000/internal/repo/redis"
)

func newTestLimiter(t *testing.T, perMinute, per10Sec int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLimiter(redrepo.NewRateRepo(client), perMinute, per10Sec), mr
}

func TestAllowLikeWithinLimits(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		retry, allowed, err := limiter.AllowLike(ctx, "user-1")
		if err != nil {
			t.Fatalf("allow like %d: %v", i, err)
		}
		if !allowed || retry != 0 {
			t.Fatalf("expected call %d allowed, retry %d", i, retry)
		}
	}
}

func TestAllowLikeBlocksPastMinuteLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, allowed, err := limiter.AllowLike(ctx, "user-1"); err != nil || !allowed {
			t.Fatalf("warmup call %d blocked: allowed=%v err=%v", i, allowed, err)
		}
	}

	retry, allowed, err := limiter.AllowLike(ctx, "user-1")
	if err != nil {
		t.Fatalf("allow like: %v", err)
	}
	if allowed {
		t.Fatal("expected third like within a minute to be blocked")
	}
	if retry <= 0 || retry > 60 {
		t.Fatalf("unexpected retry-after seconds: %d", retry)
	}
}

func TestAllowLikeRecoversAfterWindow(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, 0)
	ctx := context.Background()

	if _, allowed, _ := limiter.AllowLike(ctx, "user-1"); !allowed {
		t.Fatal("first like should pass")
	}
	if _, allowed, _ := limiter.AllowLike(ctx, "user-1"); allowed {
		t.Fatal("second like should be blocked")
	}

	mr.FastForward(61 * time.Second)

	if _, allowed, err := limiter.AllowLike(ctx, "user-1"); err != nil || !allowed {
		t.Fatalf("expected like allowed after window reset: allowed=%v err=%v", allowed, err)
	}
}

func TestAllowLikeZeroLimitsDisabled(t *testing.T) {
	limiter, _ := newTestLimiter(t, 0, 0)

	retry, allowed, err := limiter.AllowLike(context.Background(), "user-1")
	if err != nil || !allowed || retry != 0 {
		t.Fatalf("expected disabled limiter to always allow: allowed=%v retry=%d err=%v", allowed, retry, err)
	}
}

func TestAllowLikeRejectsEmptyUser(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, 1)

	if _, _, err := limiter.AllowLike(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank user id")
	}
}
