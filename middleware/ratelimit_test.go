package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitBucket(t *testing.T) {
	SetRateLimitConfig(100*time.Millisecond, 2, 2)
	now := time.Now()

	if !allow("k", now) || !allow("k", now) {
		t.Fatalf("expected the first two requests to pass")
	}
	if allow("k", now) {
		t.Fatalf("expected third request inside the window to be limited")
	}
	if !allow("other", now) {
		t.Fatalf("expected a different key to have its own bucket")
	}
	// a full window refills the bucket
	if !allow("k", now.Add(110*time.Millisecond)) {
		t.Fatalf("expected request after refill to pass")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetRateLimitConfig(time.Minute, 1, 2)

	r := gin.New()
	r.GET("/x", RateLimit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("first request: got %d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}
}

func TestAcquireUserSlot(t *testing.T) {
	SetRateLimitConfig(time.Minute, 5, 1)

	release, err := AcquireUserSlot(context.Background(), 42)
	if err != nil {
		t.Fatalf("first slot: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := AcquireUserSlot(ctx, 42); err == nil {
		t.Fatalf("expected second slot to wait until the context ends")
	}
	// other users are independent
	other, err := AcquireUserSlot(context.Background(), 43)
	if err != nil {
		t.Fatalf("other user slot: %v", err)
	}
	other()

	release()
	again, err := AcquireUserSlot(context.Background(), 42)
	if err != nil {
		t.Fatalf("slot after release: %v", err)
	}
	again()
}
