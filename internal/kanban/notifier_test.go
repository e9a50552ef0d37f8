package kanban

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talentflow/internal/metrics"
)

func TestChannelNotifier_DropsWhenFull(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	n := NewChannelNotifier(2, m)

	for i := 0; i < 5; i++ {
		n.Notify(newNotification(NotifySuccess, "moved"))
	}

	assert.Equal(t, uint64(3), n.Dropped())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.NotificationsDropped))
	assert.Len(t, n.C(), 2)
}

func TestChannelNotifier_CloseStopsDelivery(t *testing.T) {
	t.Parallel()

	n := NewChannelNotifier(4, nil)
	n.Notify(newNotification(NotifyError, "failed"))
	n.Close()
	n.Close()

	assert.NotPanics(t, func() { n.Notify(newNotification(NotifyError, "late")) })

	got, ok := <-n.C()
	require.True(t, ok)
	assert.Equal(t, "failed", got.Message)
	_, ok = <-n.C()
	assert.False(t, ok)
}

func TestInFlight(t *testing.T) {
	t.Parallel()

	f := NewInFlight()
	assert.True(t, f.Acquire("a"))
	assert.False(t, f.Acquire("a"))
	assert.True(t, f.Acquire("b"))
	assert.True(t, f.Busy("a"))

	f.Release("a")
	assert.False(t, f.Busy("a"))
	assert.True(t, f.Acquire("a"))
}
