package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type rejections struct {
	mu      sync.Mutex
	reasons []string
}

func (r *rejections) record(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func (r *rejections) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.reasons...)
}

func okHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(status) })
}

func TestRateLimitMiddlewareRejectsOverflow(t *testing.T) {
	rec := &rejections{}
	handler := rateLimitMiddleware(okHandler(http.StatusOK), 0.5, 1, rec.record)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", second.Code)
	}
	// One token every two seconds.
	if got := second.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
	if got := rec.list(); len(got) != 1 || got[0] != "rate_limit" {
		t.Fatalf("expected one rate_limit rejection, got %v", got)
	}
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	handler := rateLimitMiddleware(okHandler(http.StatusNoContent), 0, 0, nil)
	for i := 0; i < 5; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/v1/documents", nil))
		if res.Code != http.StatusNoContent {
			t.Fatalf("request %d expected 204 with limiting disabled, got %d", i, res.Code)
		}
	}
}

func TestBackpressureMiddlewareReturns503WhenSaturated(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int, 1)
	rec := &rejections{}

	slow := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		started <- struct{}{}
		<-release
		w.WriteHeader(http.StatusAccepted)
	})
	handler := backpressureMiddleware(slow, 1, 20*time.Millisecond, rec.record)

	go func() {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/process", nil))
		done <- res.Code
	}()
	<-started

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/v1/documents/doc-2/process", nil))
	if res.Code != http.StatusServiceUnavailable || res.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected 503 with Retry-After 1, got %d %q", res.Code, res.Header().Get("Retry-After"))
	}
	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Fatalf("expected an overload message, got %q (err=%v)", res.Body.String(), err)
	}
	if got := rec.list(); len(got) != 1 || got[0] != "backpressure" {
		t.Fatalf("expected one backpressure rejection, got %v", got)
	}

	close(release)
	select {
	case code := <-done:
		if code != http.StatusAccepted {
			t.Fatalf("admitted request expected 202, got %d", code)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the admitted request")
	}
}

func TestRouterRateLimitsDocumentsButNotProbes(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.APIRateLimitRPS = 1
	cfg.APIRateLimitBurst = 1
	handler := newRouterFixture(cfg).handler

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil)
		req.Header.Set(tenantHeader, "finca-01")
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		codes = append(codes, res.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected 200 then 429 on document routes, got %v", codes)
	}

	for i := 0; i < 3; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if res.Code != http.StatusOK {
			t.Fatalf("healthz request %d expected 200, got %d", i, res.Code)
		}
	}
}
