package kanban

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/talentflow/internal/metrics"
	"alfredoptarigan/talentflow/internal/models"
)

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is a user-facing message about a stage transition.
type Notification struct {
	ID          string           `json:"id"`
	Kind        NotificationKind `json:"kind"`
	Message     string           `json:"message"`
	CandidateID string           `json:"candidateId,omitempty"`
	From        models.Stage     `json:"from,omitempty"`
	To          models.Stage     `json:"to,omitempty"`
	Retryable   bool             `json:"retryable"`
	Timestamp   time.Time        `json:"timestamp"`
}

func newNotification(kind NotificationKind, msg string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   msg,
		Timestamp: time.Now().UTC(),
	}
}

// Notifier receives notifications from the controllers. Implementations must
// not block.
type Notifier interface {
	Notify(n Notification)
}

// ChannelNotifier feeds a single consumer through a buffered channel.
// When the buffer is full the notification is dropped and counted.
type ChannelNotifier struct {
	mu      sync.RWMutex
	ch      chan Notification
	closed  bool
	dropped atomic.Uint64
	metrics *metrics.Metrics
}

func NewChannelNotifier(buffer int, m *metrics.Metrics) *ChannelNotifier {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelNotifier{ch: make(chan Notification, buffer), metrics: m}
}

func (n *ChannelNotifier) Notify(note Notification) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return
	}
	select {
	case n.ch <- note:
	default:
		n.dropped.Add(1)
		n.metrics.NotificationDropped()
	}
}

// C is the consumer side of the bus.
func (n *ChannelNotifier) C() <-chan Notification {
	return n.ch
}

func (n *ChannelNotifier) Dropped() uint64 {
	return n.dropped.Load()
}

// Close stops delivery; later Notify calls are ignored.
func (n *ChannelNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.closed {
		n.closed = true
		close(n.ch)
	}
}

// NopNotifier discards everything.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}
