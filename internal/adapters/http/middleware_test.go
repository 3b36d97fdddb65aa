package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoverMiddlewareAnswers500(t *testing.T) {
	handler := recoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("unexpected nil fields")
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/fields", nil))

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil || body["error"] != "internal error" {
		t.Fatalf("unexpected body %q (err=%v)", res.Body.String(), err)
	}
}

func TestRecoverMiddlewareKeepsWrittenStatus(t *testing.T) {
	handler := recoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("after header")
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/v1/documents", nil))
	if res.Code != http.StatusAccepted {
		t.Fatalf("expected the already written status, got %d", res.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	cases := map[string]bool{
		"req-42":                 true,
		"two words":              false,
		strings.Repeat("x", 129): false,
		"":                       false,
	}
	for incoming, kept := range cases {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		if incoming != "" {
			req.Header.Set(requestIDHeader, incoming)
		}
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		got := res.Header().Get(requestIDHeader)
		if got == "" || got != seen {
			t.Fatalf("%q: header %q and context %q must match and be set", incoming, got, seen)
		}
		if (got == incoming) != kept {
			t.Fatalf("%q: expected kept=%v, got id %q", incoming, kept, got)
		}
	}
}
