package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.ObserveTransition("committed", 20*time.Millisecond)
	m.ObserveTransition("committed", 30*time.Millisecond)
	m.ObserveTransition("noop", 0)
	m.NotificationDropped()
	m.ResumeProcessed("completed")
	m.SetQueueDepth(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("noop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResumesProcessed.WithLabelValues("completed")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ResumeQueueDepth))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CommitDuration))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTransition("committed", time.Second)
		m.NotificationDropped()
		m.ResumeProcessed("failed")
		m.SetQueueDepth(1)
	})
}
