package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"accounthub/internal/http/middlewares"

	"github.com/gin-gonic/gin"
)

func limitedRouter(limit int64, window time.Duration) *gin.Engine {
	r := gin.New()

	store := middlewares.NewMemoryCounterStore()
	rl := middlewares.NewRateLimiter(store, limit, window)

	r.POST("/sign-in", rl.RateLimiterMiddleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	r := limitedRouter(2, time.Minute)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/sign-in", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/sign-in", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429, body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected a Retry-After header")
	}
}

func TestMemoryCounterStore_WindowReset(t *testing.T) {
	store := middlewares.NewMemoryCounterStore()

	count, _, err := store.Incr(context.Background(), "k", 10*time.Millisecond)
	if err != nil || count != 1 {
		t.Fatalf("first incr: count=%d err=%v", count, err)
	}

	count, _, _ = store.Incr(context.Background(), "k", 10*time.Millisecond)
	if count != 2 {
		t.Fatalf("second incr: count=%d, want 2", count)
	}

	time.Sleep(15 * time.Millisecond)

	count, _, _ = store.Incr(context.Background(), "k", 10*time.Millisecond)
	if count != 1 {
		t.Fatalf("after window: count=%d, want 1", count)
	}
}

func TestMemoryCounterStore_KeysAreIndependent(t *testing.T) {
	store := middlewares.NewMemoryCounterStore()

	for i := 0; i < 3; i++ {
		store.Incr(context.Background(), "a", time.Minute)
	}

	count, _, _ := store.Incr(context.Background(), "b", time.Minute)
	if count != 1 {
		t.Fatalf("key b should start fresh, got %d", count)
	}
}
