package services

import (
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/talentflow/internal/kanban"
)

// NotificationSink drains the board notifier, logs every notification and
// keeps the most recent ones for the API.
type NotificationSink struct {
	source <-chan kanban.Notification
	keep   int
	log    *zap.Logger

	mu     sync.RWMutex
	recent []kanban.Notification

	done chan struct{}
}

func NewNotificationSink(source <-chan kanban.Notification, keep int, log *zap.Logger) *NotificationSink {
	if keep < 1 {
		keep = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationSink{
		source: source,
		keep:   keep,
		log:    log,
		done:   make(chan struct{}),
	}
}

// Start consumes until the source channel is closed.
func (s *NotificationSink) Start() {
	go func() {
		defer close(s.done)
		for n := range s.source {
			s.record(n)
		}
	}()
}

// Wait blocks until the source has been closed and drained.
func (s *NotificationSink) Wait() {
	<-s.done
}

func (s *NotificationSink) record(n kanban.Notification) {
	fields := []zap.Field{
		zap.String("candidate_id", n.CandidateID),
		zap.String("from", string(n.From)),
		zap.String("to", string(n.To)),
	}
	if n.Kind == kanban.NotifyError {
		s.log.Warn("🔔 "+n.Message, append(fields, zap.Bool("retryable", n.Retryable))...)
	} else {
		s.log.Info("🔔 "+n.Message, fields...)
	}

	s.mu.Lock()
	s.recent = append(s.recent, n)
	if over := len(s.recent) - s.keep; over > 0 {
		s.recent = append(s.recent[:0:0], s.recent[over:]...)
	}
	s.mu.Unlock()
}

// Recent returns up to limit notifications, newest first.
func (s *NotificationSink) Recent(limit int) []kanban.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]kanban.Notification, 0, limit)
	for i := len(s.recent) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.recent[i])
	}
	return out
}
