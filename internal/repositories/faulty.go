package repositories

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/talentflow/internal/models"
)

// FaultConfig controls the simulated network of the development store.
type FaultConfig struct {
	WriteFailureRate float64
	MinLatency       time.Duration
	MaxLatency       time.Duration
	Seed             uint64
}

func (c FaultConfig) validate() error {
	if c.WriteFailureRate < 0 || c.WriteFailureRate > 1 {
		return models.NewValidationError("writeFailureRate", "must be within [0, 1]")
	}
	if c.MinLatency < 0 || c.MaxLatency < c.MinLatency {
		return models.NewValidationError("latency", "min must be >= 0 and <= max")
	}
	return nil
}

// faultyCandidateRepository delays every call and fails a share of writes
// before they reach the inner store, so a failed write never persists.
type faultyCandidateRepository struct {
	inner CandidateRepository
	cfg   FaultConfig
	log   *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewFaultyCandidateRepository(inner CandidateRepository, cfg FaultConfig, log *zap.Logger) (CandidateRepository, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &faultyCandidateRepository{
		inner: inner,
		cfg:   cfg,
		log:   log,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

func (r *faultyCandidateRepository) roll() (time.Duration, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delay := r.cfg.MinLatency
	if spread := r.cfg.MaxLatency - r.cfg.MinLatency; spread > 0 {
		delay += time.Duration(r.rng.Int64N(int64(spread) + 1))
	}
	return delay, r.rng.Float64()
}

func (r *faultyCandidateRepository) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *faultyCandidateRepository) read(ctx context.Context) error {
	delay, _ := r.roll()
	return r.wait(ctx, delay)
}

func (r *faultyCandidateRepository) write(ctx context.Context, op string) error {
	delay, p := r.roll()
	if err := r.wait(ctx, delay); err != nil {
		return err
	}
	if p < r.cfg.WriteFailureRate {
		r.log.Warn("simulated write failure", zap.String("op", op), zap.Duration("latency", delay))
		return models.StorageError(op, fmt.Errorf("simulated network error"))
	}
	return nil
}

func (r *faultyCandidateRepository) Create(ctx context.Context, c *models.Candidate, actor string) error {
	if err := r.write(ctx, "create candidate"); err != nil {
		return err
	}
	return r.inner.Create(ctx, c, actor)
}

func (r *faultyCandidateRepository) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	if err := r.read(ctx); err != nil {
		return nil, err
	}
	return r.inner.FindByID(ctx, id)
}

func (r *faultyCandidateRepository) FindAll(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	if err := r.read(ctx); err != nil {
		return nil, err
	}
	return r.inner.FindAll(ctx, filter)
}

func (r *faultyCandidateRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Candidate, error) {
	if err := r.read(ctx); err != nil {
		return nil, err
	}
	return r.inner.FindByIDs(ctx, ids)
}

func (r *faultyCandidateRepository) FindPage(ctx context.Context, filter models.CandidateFilter, page models.Page) ([]models.Candidate, models.Pagination, error) {
	if err := r.read(ctx); err != nil {
		return nil, models.Pagination{}, err
	}
	return r.inner.FindPage(ctx, filter, page)
}

func (r *faultyCandidateRepository) SetStage(ctx context.Context, id string, stage models.Stage, actor string) (*models.Candidate, error) {
	if err := r.write(ctx, "set stage"); err != nil {
		return nil, err
	}
	return r.inner.SetStage(ctx, id, stage, actor)
}

func (r *faultyCandidateRepository) Update(ctx context.Context, id string, patch models.CandidatePatch, actor string) (*models.Candidate, error) {
	if err := r.write(ctx, "update candidate"); err != nil {
		return nil, err
	}
	return r.inner.Update(ctx, id, patch, actor)
}

func (r *faultyCandidateRepository) MergeSkills(ctx context.Context, id string, skills []string) (*models.Candidate, error) {
	if err := r.write(ctx, "merge skills"); err != nil {
		return nil, err
	}
	return r.inner.MergeSkills(ctx, id, skills)
}

func (r *faultyCandidateRepository) GetTimeline(ctx context.Context, id string, order models.SortOrder) ([]models.TimelineEvent, error) {
	if err := r.read(ctx); err != nil {
		return nil, err
	}
	return r.inner.GetTimeline(ctx, id, order)
}
