package kanban

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"alfredoptarigan/talentflow/internal/models"
)

type mockStore struct {
	FindAllFunc  func(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
	SetStageFunc func(ctx context.Context, id string, stage models.Stage, actor string) (*models.Candidate, error)

	setStageCalls atomic.Int32
}

func (m *mockStore) FindAll(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	if m.FindAllFunc == nil {
		return nil, nil
	}
	return m.FindAllFunc(ctx, filter)
}

func (m *mockStore) SetStage(ctx context.Context, id string, stage models.Stage, actor string) (*models.Candidate, error) {
	m.setStageCalls.Add(1)
	return m.SetStageFunc(ctx, id, stage, actor)
}

// recordingNotifier keeps every notification for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

func candidate(id, name string, stage models.Stage) models.Candidate {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return models.Candidate{
		ID:        id,
		Name:      name,
		Email:     id + "@example.com",
		Stage:     stage,
		JobID:     "job-1",
		Skills:    models.NormalizeSkills([]string{"Go", "SQL"}),
		AppliedAt: at,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// echoStore succeeds every SetStage by returning the stored record with the
// new stage.
func echoStore(cs ...models.Candidate) *mockStore {
	byID := make(map[string]models.Candidate, len(cs))
	for _, c := range cs {
		byID[c.ID] = c
	}
	var mu sync.Mutex
	return &mockStore{
		FindAllFunc: func(context.Context, models.CandidateFilter) ([]models.Candidate, error) {
			return cs, nil
		},
		SetStageFunc: func(_ context.Context, id string, stage models.Stage, _ string) (*models.Candidate, error) {
			mu.Lock()
			defer mu.Unlock()
			c := byID[id].Clone()
			c.Stage = stage
			c.UpdatedAt = c.UpdatedAt.Add(time.Minute)
			byID[id] = c
			return &c, nil
		},
	}
}
