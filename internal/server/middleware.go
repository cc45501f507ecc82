package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/metrics"
	"github.com/HiFromAjay/checklistenserver/internal/models"
)

// Error codes returned alongside security rejections.
const (
	CodeCsrfSuspected            = "CSRF_SUSPECTED"
	CodeAuthenticationFailed     = "AUTHENTICATION_FAILED"
	CodeSessionExpired           = "SESSION_EXPIRED"
	CodeEndpointUnreachable      = "ENDPOINT_UNREACHABLE"
	CodeClientAuthenticationFail = "CLIENT_AUTHENTICATION_FAILED"
)

// responseWriter wraps http.ResponseWriter to capture status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// recoveryMiddleware catches panics and returns 500.
func recoveryMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Str("panic", fmt.Sprintf("%v", rec)).
						Str("path", r.URL.Path).
						Msg("Panic recovered in HTTP handler")
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// correlationIDMiddleware extracts or generates a correlation ID.
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID := r.Header.Get("X-Request-ID")
		if corrID == "" {
			corrID = r.Header.Get("X-Correlation-ID")
		}
		if corrID == "" {
			corrID = uuid.New().String()[:8]
		}
		w.Header().Set("X-Correlation-ID", corrID)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests and feeds the status metric.
func loggingMiddleware(logger *common.Logger, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			dur := time.Since(start)
			corrID := w.Header().Get("X-Correlation-ID")
			collector.RecordHTTPStatus(rw.statusCode)

			event := logger.Trace()
			if rw.statusCode >= 500 {
				event = logger.Error()
			} else if rw.statusCode >= 400 {
				event = logger.Info()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Int("bytes", rw.bytesWritten).
				Dur("duration", dur).
				Str("correlation_id", corrID).
				Msg("HTTP request")
		})
	}
}

// securityFilterMiddleware runs before routing. It answers favicon probes,
// rejects requests whose Origin/Referer contradict the trusted origin, and
// verifies any bearer token, placing the verified subject on the request
// context. Anonymous requests without a bearer header pass through; the
// handlers enforce where identity is required.
func securityFilterMiddleware(origins *originValidator, tokens *jwtVerifier, logger *common.Logger, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/favicon.ico" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if err := origins.Validate(r); err != nil {
				// Full header dump goes to the audit log only; the caller
				// learns nothing beyond the rejection itself.
				logger.Warn().
					Str("headers", headerDump(r)).
					Str("remote", r.RemoteAddr).
					Msg("Request rejected as suspected CSRF")
				collector.RecordCsrfRejected()
				WriteErrorWithCode(w, http.StatusForbidden, "Request rejected", CodeCsrfSuspected)
				return
			}

			claims, err := tokens.Verify(r.Header.Get("Authorization"))
			if err != nil {
				if isSessionExpired(err) {
					collector.RecordSessionExpired()
					WriteErrorWithCode(w, http.StatusUnauthorized, "Session expired", CodeSessionExpired)
					return
				}
				logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Bearer token rejected")
				collector.RecordAuthFailure()
				WriteErrorWithCode(w, http.StatusUnauthorized, "Authentication failed", CodeAuthenticationFailed)
				return
			}

			if claims != nil {
				r = r.WithContext(common.WithSubject(r.Context(), claims.Subject))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSessionExpired(err error) bool {
	return errors.Is(err, models.ErrSessionExpired)
}

// applyMiddleware wraps a handler with the middleware stack.
func applyMiddleware(handler http.Handler, logger *common.Logger, config *common.Config, collector *metrics.Collector) http.Handler {
	origins := newOriginValidator(config.Auth.TargetOrigin, config.Auth.BlockOnMissingOriginReferer)
	tokens := newJWTVerifier(config.Auth.JWTSecret)

	// Apply in reverse order (last applied = first executed)
	handler = loggingMiddleware(logger, collector)(handler)
	handler = securityFilterMiddleware(origins, tokens, logger, collector)(handler)
	handler = correlationIDMiddleware(handler)
	handler = recoveryMiddleware(logger)(handler)
	return handler
}
