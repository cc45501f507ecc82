package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/metrics"
)

func newFilterHandler(t *testing.T, blockOnMissing bool, next http.Handler) http.Handler {
	t.Helper()
	origins := newOriginValidator(trustedOrigin, blockOnMissing)
	tokens := newJWTVerifier(testJWTSecret)
	return securityFilterMiddleware(origins, tokens, common.NewSilentLogger(), metrics.New())(next)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityFilter_FaviconShortCircuit(t *testing.T) {
	handler := newFilterHandler(t, false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("favicon request must not reach the mux")
	}))

	req := httptest.NewRequest(http.MethodGet, "/favicon.ico", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestSecurityFilter_CsrfRejectionWithoutDetail(t *testing.T) {
	handler := newFilterHandler(t, false, okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/checklists", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), CodeCsrfSuspected) {
		t.Errorf("expected code %s in body, got %s", CodeCsrfSuspected, rec.Body.String())
	}
	// The body must not leak which header failed or what was expected
	for _, leak := range []string{"evil.example", "localhost:4200", "Origin", "Referer"} {
		if strings.Contains(rec.Body.String(), leak) {
			t.Errorf("response leaks %q: %s", leak, rec.Body.String())
		}
	}
}

func TestSecurityFilter_AnonymousPassesThrough(t *testing.T) {
	reached := false
	handler := newFilterHandler(t, false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if _, ok := common.SubjectFromContext(r.Context()); ok {
			t.Error("expected no subject for anonymous request")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !reached {
		t.Error("expected anonymous request to reach the mux")
	}
}

func TestSecurityFilter_ValidBearerSetsSubject(t *testing.T) {
	handler := newFilterHandler(t, false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := common.SubjectFromContext(r.Context())
		if !ok || subject != "alice" {
			t.Errorf("expected subject alice, got %q (ok=%v)", subject, ok)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/checklists", nil)
	req.Header.Set("Authorization", "Bearer "+signTestJWT(t, testJWTSecret, "alice", time.Hour))
	req.Header.Set("Origin", trustedOrigin)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSecurityFilter_InvalidBearerRejected(t *testing.T) {
	handler := newFilterHandler(t, false, okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/checklists", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), CodeAuthenticationFailed) {
		t.Errorf("expected code %s, got %s", CodeAuthenticationFailed, rec.Body.String())
	}
}

func TestSecurityFilter_ExpiredBearerDistinctCode(t *testing.T) {
	handler := newFilterHandler(t, false, okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/checklists", nil)
	req.Header.Set("Authorization", "Bearer "+signTestJWT(t, testJWTSecret, "alice", -time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), CodeSessionExpired) {
		t.Errorf("expected code %s, got %s", CodeSessionExpired, rec.Body.String())
	}
}

func TestSecurityFilter_OriginCheckedBeforeToken(t *testing.T) {
	handler := newFilterHandler(t, false, okHandler())

	// Valid token, hostile origin: the CSRF rejection must win
	req := httptest.NewRequest(http.MethodPost, "/api/checklists", nil)
	req.Header.Set("Authorization", "Bearer "+signTestJWT(t, testJWTSecret, "alice", time.Hour))
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestCorrelationIDMiddleware_GeneratesID(t *testing.T) {
	handler := correlationIDMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("expected generated correlation id")
	}
}

func TestCorrelationIDMiddleware_PropagatesRequestID(t *testing.T) {
	handler := correlationIDMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "req-42" {
		t.Errorf("expected req-42, got %s", got)
	}
}

func TestRecoveryMiddleware_CatchesPanic(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
