package webserver

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	if !rl.allow("alice") || !rl.allow("alice") {
		t.Fatal("requests inside the window were refused")
	}
	if rl.allow("alice") {
		t.Error("third request inside the window was allowed")
	}
	// Other keys have their own budget.
	if !rl.allow("bob") {
		t.Error("separate key was throttled")
	}
}

func TestRateLimitMiddleware_TooManyRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/submit", RateLimitMiddleware(NewRateLimiter(1, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/submit", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/submit", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", second.Code)
	}
}

// Slow handlers must run concurrently under the middleware. The limiter's
// lock covers only its own bookkeeping; holding it across the handler would
// serialize every submission behind one in-flight classification call.
func TestRateLimitMiddleware_HandlersRunConcurrently(t *testing.T) {
	gin.SetMode(gin.TestMode)

	const n = 3
	running := make(chan struct{}, n)
	release := make(chan struct{})

	router := gin.New()
	router.POST("/submit", RateLimitMiddleware(NewRateLimiter(10, time.Minute)), func(c *gin.Context) {
		running <- struct{}{}
		<-release
		c.Status(http.StatusOK)
	})

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
		}()
	}

	// All n handlers must be in flight at once before any is released.
	for i := 0; i < n; i++ {
		select {
		case <-running:
		case <-time.After(2 * time.Second):
			close(release)
			wg.Wait()
			t.Fatalf("only %d of %d handlers running; middleware serializes requests", i, n)
		}
	}
	close(release)
	wg.Wait()
}
