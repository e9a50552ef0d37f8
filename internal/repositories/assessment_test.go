package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"alfredoptarigan/talentflow/internal/models"
	"alfredoptarigan/talentflow/internal/repositories"
	"alfredoptarigan/talentflow/internal/repositories/repotest"
)

func screening(jobID string) *models.Assessment {
	return &models.Assessment{
		JobID: jobID,
		Title: "Screening",
		Sections: datatypes.NewJSONSlice([]models.Section{{
			ID:    "s1",
			Title: "About you",
			Questions: []models.Question{
				{ID: "q1", Type: models.QuestionShortText, Label: "Name", Required: true},
				{ID: "q2", Type: models.QuestionSingleChoice, Label: "Remote", Options: []string{"yes", "no"}},
			},
		}}),
	}
}

func TestAssessmentRepository_SaveReplaces(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	job := repotest.SeedJob(t, db, "Backend")
	repo := repositories.NewAssessmentRepository(db)
	ctx := context.Background()

	first, err := repo.Save(ctx, screening(job.ID))
	require.NoError(t, err)

	second := screening(job.ID)
	second.Title = "Screening v2"
	saved, err := repo.Save(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, saved.ID)

	got, err := repo.FindByJobID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Screening v2", got.Title)
	require.Len(t, got.Sections, 1)
	assert.Len(t, got.Sections[0].Questions, 2)

	_, err = repo.FindByJobID(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAssessmentRepository_SaveRejects(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	job := repotest.SeedJob(t, db, "Backend")
	repo := repositories.NewAssessmentRepository(db)
	jobs := repositories.NewJobRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, screening("ghost"))
	assert.ErrorIs(t, err, models.ErrNotFound)

	invalid := screening(job.ID)
	invalid.Sections[0].Questions[1].Options = nil
	_, err = repo.Save(ctx, invalid)
	assert.ErrorIs(t, err, models.ErrValidation)

	archived := models.JobStatusArchived
	_, err = jobs.Update(ctx, job.ID, models.JobPatch{Status: &archived})
	require.NoError(t, err)
	_, err = repo.Save(ctx, screening(job.ID))
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAssessmentRepository_SubmitResponse(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	job := repotest.SeedJob(t, db, "Backend")
	other := repotest.SeedJob(t, db, "Design")
	candidates := repositories.NewCandidateRepository(db)
	repo := repositories.NewAssessmentRepository(db)
	ctx := context.Background()

	c := &models.Candidate{Name: "Ann", Email: "ann@example.com", JobID: job.ID}
	require.NoError(t, candidates.Create(ctx, c, "seed"))
	outsider := repotest.SeedCandidate(t, db, other.ID, "Out", models.StageApplied, 0)

	_, err := repo.Save(ctx, screening(job.ID))
	require.NoError(t, err)

	t.Run("invalid answers", func(t *testing.T) {
		err := repo.SubmitResponse(ctx, &models.AssessmentResponse{
			JobID: job.ID, CandidateID: c.ID, Answers: datatypes.JSONMap{"q2": "maybe"},
		}, "ann")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("candidate of another job", func(t *testing.T) {
		err := repo.SubmitResponse(ctx, &models.AssessmentResponse{
			JobID: job.ID, CandidateID: outsider.ID, Answers: datatypes.JSONMap{"q1": "Out"},
		}, "out")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("accepted", func(t *testing.T) {
		resp := &models.AssessmentResponse{
			JobID: job.ID, CandidateID: c.ID, Answers: datatypes.JSONMap{"q1": "Ann", "q2": "yes"},
		}
		require.NoError(t, repo.SubmitResponse(ctx, resp, "ann"))
		assert.NotEmpty(t, resp.ID)

		events, err := candidates.GetTimeline(ctx, c.ID, models.SortAsc)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, models.EventAssessmentCompleted, events[1].Type)
		assert.Equal(t, resp.ID, events[1].Metadata["responseId"])
	})
}
