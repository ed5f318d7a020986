// Package metrics exposes recomputation and HTTP metrics to prometheus.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dashboard"
)

const namespace = "vizdash"

// Recorder holds the collectors. Each Recorder registers on its own
// registry so tests can build as many as they like.
type Recorder struct {
	reg *prometheus.Registry

	recomputes *prometheus.CounterVec
	failures   *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		recomputes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputations_total",
			Help:      "Completed recomputations per dashboard.",
		}, []string{"dashboard"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_failures_total",
			Help:      "Outputs that failed to build, by error code.",
		}, []string{"dashboard", "output", "code"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_rejected_total",
			Help:      "Events refused before recomputation.",
		}, []string{"dashboard", "reason"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Time to recompute every output of a dashboard.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"dashboard"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Recomputed records one recomputation and its failed outputs.
func (r *Recorder) Recomputed(name string, d time.Duration, outs []dashboard.Output) {
	r.recomputes.WithLabelValues(name).Inc()
	r.duration.WithLabelValues(name).Observe(d.Seconds())
	for _, o := range outs {
		if !o.OK() {
			r.failures.WithLabelValues(name, o.ID, string(o.Code)).Inc()
		}
	}
}

// Rejected records an event refused before recomputation.
func (r *Recorder) Rejected(name string, err error) {
	r.rejected.WithLabelValues(name, reason(err)).Inc()
}

// Request records one served HTTP request. route is the route pattern, not
// the raw path.
func (r *Recorder) Request(route string, status int, d time.Duration) {
	r.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.latency.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

func reason(err error) string {
	switch {
	case errors.Is(err, dashboard.ErrUnknownLocation), errors.Is(err, dashboard.ErrNotClickable):
		return "click"
	case errors.Is(err, controls.ErrUnknownControl):
		return "unknown_control"
	case errors.Is(err, controls.ErrInvalidValue):
		return "invalid_value"
	default:
		return "other"
	}
}
