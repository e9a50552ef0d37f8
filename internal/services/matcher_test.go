package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talentflow/internal/models"
	"alfredoptarigan/talentflow/internal/repositories"
	"alfredoptarigan/talentflow/internal/repositories/repotest"
)

func TestBestPerCandidate(t *testing.T) {
	t.Parallel()

	got := bestPerCandidate([]SearchResult{
		{CandidateID: "a", Score: 0.4, Text: "a-low"},
		{CandidateID: "b", Score: 0.7},
		{CandidateID: "a", Score: 0.9, Text: "a-high"},
		{CandidateID: "", Score: 1},
		{CandidateID: "c", Score: 0.7},
	})
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].CandidateID)
	assert.Equal(t, "a-high", got[0].Text)
	assert.Equal(t, "b", got[1].CandidateID)
	assert.Equal(t, "c", got[2].CandidateID)
}

func TestMatchService_RanksCandidates(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	job := repotest.SeedJob(t, db, "Backend Engineer")
	ann := repotest.SeedCandidate(t, db, job.ID, "Ann Lee", models.StageApplied, 0)
	bob := repotest.SeedCandidate(t, db, job.ID, "Bob Ray", models.StageScreen, 1)

	gemini := &mockGemini{GenerateEmbeddingFunc: func(_ context.Context, text string) ([]float32, error) {
		assert.Contains(t, text, "Backend Engineer")
		return []float32{1, 0}, nil
	}}
	index := &mockIndex{SearchByJobFunc: func(_ context.Context, _ []float32, jobID string, limit int) ([]SearchResult, error) {
		assert.Equal(t, job.ID, jobID)
		assert.Equal(t, 2*chunksPerCandidate, limit)
		return []SearchResult{
			{CandidateID: bob.ID, Score: 0.91, Text: "Go and Postgres"},
			{CandidateID: ann.ID, Score: 0.52, Text: "Design systems"},
			{CandidateID: bob.ID, Score: 0.60, Text: "other chunk"},
			{CandidateID: "deleted", Score: 0.40},
		}, nil
	}}

	svc := NewMatchService(repositories.NewJobRepository(db), repositories.NewCandidateRepository(db), gemini, index, nil)
	matches, err := svc.MatchCandidates(context.Background(), job.ID, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, bob.ID, matches[0].Candidate.ID)
	assert.Equal(t, "Go and Postgres", matches[0].Excerpt)
	assert.Equal(t, ann.ID, matches[1].Candidate.ID)
}

func TestMatchService_Unavailable(t *testing.T) {
	t.Parallel()

	svc := NewMatchService(nil, nil, nil, nil, nil)
	_, err := svc.MatchCandidates(context.Background(), "job", 5)
	assert.ErrorIs(t, err, models.ErrUnavailable)
}

func TestMatchService_UnknownJob(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	svc := NewMatchService(repositories.NewJobRepository(db), repositories.NewCandidateRepository(db),
		&mockGemini{}, &mockIndex{}, nil)
	_, err := svc.MatchCandidates(context.Background(), "missing", 5)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", excerpt("short", 10))
	assert.Equal(t, "abc…", excerpt("abcdef", 3))
}
