package kanban

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/talentflow/internal/metrics"
	"alfredoptarigan/talentflow/internal/models"
)

// CandidateStore is the part of the candidate repository the board needs.
type CandidateStore interface {
	FindAll(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
	SetStage(ctx context.Context, id string, stage models.Stage, actor string) (*models.Candidate, error)
}

type actorKey struct{}

// WithActor records who performs the transitions made with ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// Transition outcomes as reported to metrics.
const (
	outcomeCommitted  = "committed"
	outcomeNoop       = "noop"
	outcomeRolledBack = "rolled_back"
	outcomeRejected   = "rejected"
)

// OptimisticController applies a stage change to the board view first and
// persists it second, restoring the pre-change record when the write fails.
type OptimisticController struct {
	store        CandidateStore
	view         *BoardView
	inflight     *InFlight
	notifier     Notifier
	metrics      *metrics.Metrics
	log          *zap.Logger
	defaultActor string
}

func NewOptimisticController(
	store CandidateStore,
	view *BoardView,
	inflight *InFlight,
	notifier Notifier,
	m *metrics.Metrics,
	log *zap.Logger,
) *OptimisticController {
	if inflight == nil {
		inflight = NewInFlight()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OptimisticController{
		store:        store,
		view:         view,
		inflight:     inflight,
		notifier:     notifier,
		metrics:      m,
		log:          log,
		defaultActor: "system",
	}
}

func (c *OptimisticController) actor(ctx context.Context) string {
	if a := ActorFrom(ctx); a != "" {
		return a
	}
	return c.defaultActor
}

// CommitStageChange moves a candidate to target. Store failures never escape
// as panics; they come back as errors after the view has been restored and
// an error notification published.
func (c *OptimisticController) CommitStageChange(ctx context.Context, candidateID string, target models.Stage) (*models.Candidate, error) {
	if !target.IsValid() {
		err := models.NewValidationError("stage", fmt.Sprintf("unknown stage %q", target))
		c.reject(candidateID, target, err)
		return nil, err
	}
	if !c.inflight.Acquire(candidateID) {
		err := fmt.Errorf("candidate %s: %w", candidateID, models.ErrTransitionInFlight)
		c.reject(candidateID, target, err)
		return nil, err
	}
	defer c.inflight.Release(candidateID)

	snapshot, ok := c.view.Candidate(candidateID)
	if !ok {
		err := fmt.Errorf("candidate %s: %w", candidateID, models.ErrNotFound)
		c.reject(candidateID, target, err)
		return nil, err
	}
	if snapshot.Stage == target {
		c.metrics.ObserveTransition(outcomeNoop, 0)
		return &snapshot, nil
	}

	c.view.ApplyStage(candidateID, target)

	if err := ctx.Err(); err != nil {
		c.view.Restore(snapshot)
		c.metrics.ObserveTransition(outcomeRolledBack, 0)
		c.publishFailure(snapshot, target, fmt.Errorf("move cancelled: %w", err))
		return nil, err
	}

	// Once issued, the write runs to completion regardless of the caller.
	start := time.Now()
	updated, err := c.store.SetStage(context.WithoutCancel(ctx), candidateID, target, c.actor(ctx))
	elapsed := time.Since(start)
	if err != nil {
		c.view.Restore(snapshot)
		c.metrics.ObserveTransition(outcomeRolledBack, elapsed)
		c.log.Warn("stage change rolled back",
			zap.String("candidate_id", candidateID),
			zap.String("from", string(snapshot.Stage)),
			zap.String("to", string(target)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		c.publishFailure(snapshot, target, err)
		return nil, err
	}

	c.view.Merge(*updated)
	c.metrics.ObserveTransition(outcomeCommitted, elapsed)
	c.log.Info("stage changed",
		zap.String("candidate_id", candidateID),
		zap.String("from", string(snapshot.Stage)),
		zap.String("to", string(target)),
		zap.Duration("elapsed", elapsed),
	)

	n := newNotification(NotifySuccess, fmt.Sprintf("%s moved to %s", updated.Name, target.DisplayName()))
	n.CandidateID, n.From, n.To = candidateID, snapshot.Stage, target
	c.notifier.Notify(n)

	out := updated.Clone()
	return &out, nil
}

func (c *OptimisticController) reject(candidateID string, target models.Stage, err error) {
	c.metrics.ObserveTransition(outcomeRejected, 0)
	n := newNotification(NotifyError, err.Error())
	n.CandidateID, n.To = candidateID, target
	n.Retryable = models.IsRetryable(err)
	c.notifier.Notify(n)
}

func (c *OptimisticController) publishFailure(snapshot models.Candidate, target models.Stage, err error) {
	msg := fmt.Sprintf("Could not move %s to %s", snapshot.Name, target.DisplayName())
	if errors.Is(err, models.ErrStorageFailure) {
		msg += ", please try again"
	}
	n := newNotification(NotifyError, msg)
	n.CandidateID, n.From, n.To = snapshot.ID, snapshot.Stage, target
	n.Retryable = models.IsRetryable(err)
	c.notifier.Notify(n)
}
