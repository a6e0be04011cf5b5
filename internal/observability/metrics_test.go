package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordSLA("breached")
	m.RecordSLA("breached")
	m.RecordHistory("STATUS")
	m.RecordNotifications("new_comment", 3, nil)
	m.RecordNotifications("new_comment", 2, errors.New("boom"))
	m.ObserveHTTPRequest("GET", "/tickets/:id", 200, 15*time.Millisecond)

	require.Equal(t, float64(2), testutil.ToFloat64(m.slaOutcomes.WithLabelValues("breached")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.historyEntries.WithLabelValues("STATUS")))
	require.Equal(t, float64(3), testutil.ToFloat64(m.notifications.WithLabelValues("new_comment", "created")))
	require.Equal(t, float64(2), testutil.ToFloat64(m.notifications.WithLabelValues("new_comment", "failed")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/tickets/:id", "200")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordSLA("met")
		m.RecordHistory("COMMENT")
		m.RecordNotifications("ticket_created", 1, nil)
		m.ObserveSweep(time.Second)
		m.RecordError("/x", "GET", "NOT_FOUND")
	})
	require.NotNil(t, m.Handler())
}
