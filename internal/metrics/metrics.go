// Package metrics collects and exposes Prometheus metrics for the
// security filter, the token exchange, and checklist updates.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exchange failure reasons recorded by RecordExchangeFailure.
const (
	ReasonUnreachable   = "unreachable"
	ReasonRejected      = "rejected"
	ReasonNonceMismatch = "nonce_mismatch"
)

// Collector registers and records all server metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	csrfRejected     prometheus.Counter
	authFailed       prometheus.Counter
	sessionExpired   prometheus.Counter
	exchangeFailures *prometheus.CounterVec
	updateConflicts  prometheus.Counter
	httpStatus       *prometheus.CounterVec
}

// New creates a Collector with a dedicated registry.
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		csrfRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checklisten_csrf_rejected_total",
			Help: "Requests rejected by the Origin/Referer check.",
		}),
		authFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checklisten_auth_failed_total",
			Help: "Requests rejected with an invalid bearer token.",
		}),
		sessionExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checklisten_session_expired_total",
			Help: "Requests rejected with an expired bearer token.",
		}),
		exchangeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checklisten_token_exchange_failures_total",
			Help: "One-time-token exchange failures by reason.",
		}, []string{"reason"}),
		updateConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checklisten_update_conflicts_total",
			Help: "Checklist updates resolved as version conflicts.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checklisten_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.csrfRejected,
		c.authFailed,
		c.sessionExpired,
		c.exchangeFailures,
		c.updateConflicts,
		c.httpStatus,
	)

	return c
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordCsrfRejected counts a CSRF-suspected rejection.
func (c *Collector) RecordCsrfRejected() {
	if c == nil {
		return
	}
	c.csrfRejected.Inc()
}

// RecordAuthFailure counts an invalid-token rejection.
func (c *Collector) RecordAuthFailure() {
	if c == nil {
		return
	}
	c.authFailed.Inc()
}

// RecordSessionExpired counts an expired-token rejection.
func (c *Collector) RecordSessionExpired() {
	if c == nil {
		return
	}
	c.sessionExpired.Inc()
}

// RecordExchangeFailure counts a failed one-time-token exchange.
func (c *Collector) RecordExchangeFailure(reason string) {
	if c == nil {
		return
	}
	c.exchangeFailures.WithLabelValues(reason).Inc()
}

// RecordUpdateConflict counts an update resolved as a conflict.
func (c *Collector) RecordUpdateConflict() {
	if c == nil {
		return
	}
	c.updateConflicts.Inc()
}

// RecordHTTPStatus counts a response by status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	if c == nil {
		return
	}
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}
