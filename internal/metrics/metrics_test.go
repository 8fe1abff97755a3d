package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(Exports.WithLabelValues("csv"))
	IncExport("csv")
	if got := testutil.ToFloat64(Exports.WithLabelValues("csv")); got != before+1 {
		t.Fatalf("exports = %v, want %v", got, before+1)
	}

	hits := testutil.ToFloat64(DashboardCache.WithLabelValues("hit"))
	IncDashboardCache(true)
	IncDashboardCache(false)
	if got := testutil.ToFloat64(DashboardCache.WithLabelValues("hit")); got != hits+1 {
		t.Fatalf("cache hits = %v", got)
	}

	IncMilestoneTransition("pending", "in-progress")
	if got := testutil.ToFloat64(MilestoneTransitions.WithLabelValues("pending", "in-progress")); got < 1 {
		t.Fatalf("transitions = %v", got)
	}
}

func TestSecurityEvents(t *testing.T) {
	before := testutil.ToFloat64(SecurityEvents.WithLabelValues("rate_limited"))
	IncSecurityEvent("rate_limited")
	if got := testutil.ToFloat64(SecurityEvents.WithLabelValues("rate_limited")); got != before+1 {
		t.Fatalf("rate_limited = %v, want %v", got, before+1)
	}
}
