package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/staffman/internal/auth"
	"github.com/hitoshi/staffman/internal/model"
)

func newTestRateLimiter(t *testing.T) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001),
		GeneralBurst:    2,
		LoginRate:       rate.Limit(0.001),
		LoginBurst:      2,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(rl.Stop)
	return rl
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// バースト分を消費した後のログイン試行は429になること
func TestRateLimiter_LoginMiddleware_BlocksAfterBurst(t *testing.T) {
	rl := newTestRateLimiter(t)
	mw := rl.LoginMiddleware()(okHandler())

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		return req
	}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, newReq())
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, newReq())
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header not set")
	}
}

// 制限はIPごとに独立していること
func TestRateLimiter_LoginMiddleware_PerIP(t *testing.T) {
	rl := newTestRateLimiter(t)
	mw := rl.LoginMiddleware()(okHandler())

	exhaust := func(addr string) {
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
			req.RemoteAddr = addr
			mw.ServeHTTP(httptest.NewRecorder(), req)
		}
	}
	exhaust("10.0.0.1:54321")

	// 別IPは制限されない
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.2:54321"
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRateLimiter_GeneralMiddleware_RequiresSession(t *testing.T) {
	rl := newTestRateLimiter(t)
	mw := rl.GeneralMiddleware()(okHandler())

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/employees", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRateLimiter_GeneralMiddleware_BlocksAfterBurst(t *testing.T) {
	rl := newTestRateLimiter(t)
	mw := rl.GeneralMiddleware()(okHandler())

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
		return req.WithContext(auth.ContextWithSession(req.Context(), &model.SessionPayload{
			UserID: "user-1",
			Role:   model.RoleViewer,
		}))
	}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, newReq())
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, newReq())
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}
