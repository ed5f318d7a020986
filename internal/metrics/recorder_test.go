package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dashboard"
)

func TestRecomputed(t *testing.T) {
	r := NewRecorder()
	outs := []dashboard.Output{
		{ID: "scatter"},
		{ID: "hist", Err: errors.New("boom"), Code: dashboard.CodeMissingColumn},
	}
	r.Recomputed("iris", 3*time.Millisecond, outs)
	r.Recomputed("iris", time.Millisecond, outs[:1])

	if got := testutil.ToFloat64(r.recomputes.WithLabelValues("iris")); got != 2 {
		t.Errorf("expected 2 recomputations, got %v", got)
	}
	if got := testutil.ToFloat64(r.failures.WithLabelValues("iris", "hist", "missing_column")); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
	if n := testutil.CollectAndCount(r.duration); n != 1 {
		t.Errorf("expected one duration series, got %d", n)
	}
}

func TestRejected(t *testing.T) {
	r := NewRecorder()
	r.Rejected("gapminder", fmt.Errorf("wrapped: %w", dashboard.ErrUnknownLocation))
	r.Rejected("gapminder", &controls.StateError{Control: "year", Err: controls.ErrInvalidValue})

	if got := testutil.ToFloat64(r.rejected.WithLabelValues("gapminder", "click")); got != 1 {
		t.Errorf("expected 1 click rejection, got %v", got)
	}
	if got := testutil.ToFloat64(r.rejected.WithLabelValues("gapminder", "invalid_value")); got != 1 {
		t.Errorf("expected 1 invalid value rejection, got %v", got)
	}
}

func TestRequest(t *testing.T) {
	r := NewRecorder()
	r.Request("/api/dashboards", 200, 2*time.Millisecond)
	r.Request("/api/dashboards", 200, time.Millisecond)
	r.Request("/api/dashboards/{name}", 404, time.Millisecond)

	if got := testutil.ToFloat64(r.requests.WithLabelValues("/api/dashboards", "200")); got != 2 {
		t.Errorf("expected 2 requests, got %v", got)
	}
	if n := testutil.CollectAndCount(r.latency); n != 2 {
		t.Errorf("expected one latency series per route, got %d", n)
	}
}
