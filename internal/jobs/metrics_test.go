package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTrackerCountsOutcomes(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	_ = m.Track("orders:import").End(nil)
	err := m.Track("orders:import").End(errors.New("boom"))
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected error to pass through, got %v", err)
	}

	if got := testutil.ToFloat64(m.runs.WithLabelValues("orders:import", "success")); got != 1 {
		t.Fatalf("expected one success, got %v", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("orders:import")); got != 1 {
		t.Fatalf("expected one failure, got %v", got)
	}
}

func TestImportedAndLowStock(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddImported(3)
	m.AddImported(0)
	m.SetLowStock(2)

	if got := testutil.ToFloat64(m.imported); got != 3 {
		t.Fatalf("expected 3 imported, got %v", got)
	}
	if got := testutil.ToFloat64(m.lowStock); got != 2 {
		t.Fatalf("expected 2 low stock, got %v", got)
	}

	var nilMetrics *Metrics
	nilMetrics.AddImported(1)
	nilMetrics.SetLowStock(1)
	_ = nilMetrics.Track("x").End(nil)
}
