package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talentflow/internal/models"
	"alfredoptarigan/talentflow/internal/repositories"
	"alfredoptarigan/talentflow/internal/repositories/repotest"
)

func TestCandidateRepository_CreateAppendsAppliedEvent(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	job := repotest.SeedJob(t, db, "Backend Engineer")
	repo := repositories.NewCandidateRepository(db)
	ctx := context.Background()

	c := &models.Candidate{
		Name:   "Ann Lee",
		Email:  "ann@example.com",
		JobID:  job.ID,
		Skills: []string{"Go", " go ", "SQL"},
	}
	require.NoError(t, repo.Create(ctx, c, "rita"))

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, models.StageApplied, c.Stage)
	assert.Equal(t, []string{"Go", "SQL"}, []string(c.Skills))

	stored, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", stored.Name)
	assert.Equal(t, []string{"Go", "SQL"}, []string(stored.Skills))

	events, err := repo.GetTimeline(ctx, c.ID, models.SortAsc)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventApplied, events[0].Type)
	assert.Equal(t, "rita", events[0].Actor)
	assert.Equal(t, time.UTC, events[0].Timestamp.Location())
}

func TestCandidateRepository_CreateRejectsInvalid(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	repo := repositories.NewCandidateRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &models.Candidate{Name: "X", Email: "x@example.com", JobID: "no-such-job"}, "rita")
	assert.ErrorIs(t, err, models.ErrValidation)

	err = repo.Create(ctx, &models.Candidate{Name: "X", Email: "x@example.com", JobID: "j", Stage: "archived"}, "rita")
	assert.ErrorIs(t, err, models.ErrValidation)

	all, err := repo.FindAll(ctx, models.CandidateFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCandidateRepository_FindAllFilters(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	backend := repotest.SeedJob(t, db, "Backend")
	design := repotest.SeedJob(t, db, "Design")
	repo := repositories.NewCandidateRepository(db)
	ctx := context.Background()

	ann := repotest.SeedCandidate(t, db, backend.ID, "Ann Lee", models.StageApplied, 0)
	bob := repotest.SeedCandidate(t, db, backend.ID, "Bob 100%", models.StageTech, time.Minute)
	cat := repotest.SeedCandidate(t, db, design.ID, "Cat Ng", models.StageTech, 2*time.Minute)
	_, err := repo.MergeSkills(ctx, cat.ID, []string{"Figma", "Kubernetes"})
	require.NoError(t, err)

	ids := func(cs []models.Candidate) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	all, err := repo.FindAll(ctx, models.CandidateFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{ann.ID, bob.ID, cat.ID}, ids(all), "fetch order is appliedAt")

	byStage, err := repo.FindAll(ctx, models.CandidateFilter{Stage: models.StageTech})
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID, cat.ID}, ids(byStage))

	byJob, err := repo.FindAll(ctx, models.CandidateFilter{JobID: backend.ID, Stage: models.StageTech})
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, ids(byJob))

	bySkill, err := repo.FindAll(ctx, models.CandidateFilter{Search: "KUBER"})
	require.NoError(t, err)
	assert.Equal(t, []string{cat.ID}, ids(bySkill))

	// LIKE wildcards in the term are literal.
	byPercent, err := repo.FindAll(ctx, models.CandidateFilter{Search: "100%"})
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, ids(byPercent))
}

func TestCandidateRepository_SearchFoldsUnicodeAndIgnoresEncoding(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	job := repotest.SeedJob(t, db, "Research")
	repo := repositories.NewCandidateRepository(db)
	ctx := context.Background()

	elodie := &models.Candidate{
		Name:         "Élodie Dupont",
		Email:        "elodie@example.com",
		CurrentTitle: "Ingénieure",
		JobID:        job.ID,
		Skills:       []string{"R&D", "C++"},
	}
	require.NoError(t, repo.Create(ctx, elodie, "rita"))
	plain := repotest.SeedCandidate(t, db, job.ID, "Sam Ortiz", models.StageApplied, time.Minute)

	ids := func(cs []models.Candidate) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	tests := []struct {
		term string
		want []string
	}{
		{term: "élodie", want: []string{elodie.ID}},
		{term: "ÉLODIE", want: []string{elodie.ID}},
		{term: "INGÉNIEURE", want: []string{elodie.ID}},
		{term: "r&d", want: []string{elodie.ID}},
		{term: "c++", want: []string{elodie.ID}},
		{term: "ortiz", want: []string{plain.ID}},
		// JSON encoding of the skills column must not be searchable.
		{term: `","`, want: []string{}},
		{term: "[", want: []string{}},
		{term: `\u0026`, want: []string{}},
	}
	all, err := repo.FindAll(ctx, models.CandidateFilter{})
	require.NoError(t, err)

	for _, tt := range tests {
		filter := models.CandidateFilter{Search: tt.term}
		got, err := repo.FindAll(ctx, filter)
		require.NoError(t, err, tt.term)
		assert.Equal(t, tt.want, ids(got), tt.term)

		var inMemory []string
		for i := range all {
			if filter.Matches(&all[i]) {
				inMemory = append(inMemory, all[i].ID)
			}
		}
		assert.ElementsMatch(t, tt.want, inMemory, "in-memory filter agrees for %q", tt.term)
	}
}

func TestCandidateRepository_SearchTracksWrites(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	job := repotest.SeedJob(t, db, "Research")
	repo := repositories.NewCandidateRepository(db)
	ctx := context.Background()

	c := repotest.SeedCandidate(t, db, job.ID, "Ann Lee", models.StageApplied, 0)

	find := func(term string) int {
		got, err := repo.FindAll(ctx, models.CandidateFilter{Search: term})
		require.NoError(t, err)
		return len(got)
	}

	name := "Zoë Ångström"
	_, err := repo.Update(ctx, c.ID, models.CandidatePatch{Name: &name}, "rita")
	require.NoError(t, err)
	assert.Equal(t, 1, find("zoë ångström"))
	assert.Zero(t, find("ann lee"), "old name is no longer indexed")

	merged, err := repo.MergeSkills(ctx, c.ID, []string{"Node.js"})
	require.NoError(t, err)
	assert.Equal(t, 1, find("node.js"))
	assert.Equal(t, merged.SearchKey(), merged.SearchText)
}

func TestCandidateRepository_FindPage(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	job := repotest.SeedJob(t, db, "Backend")
	repo := repositories.NewCandidateRepository(db)
	for i := 0; i < 5; i++ {
		repotest.SeedCandidate(t, db, job.ID, "Candidate", models.StageScreen, time.Duration(i)*time.Minute)
	}

	page, p, err := repo.FindPage(context.Background(), models.CandidateFilter{}, models.Page{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, models.Pagination{Page: 2, PageSize: 2, Total: 5, TotalPages: 3}, p)

	last, _, err := repo.FindPage(context.Background(), models.CandidateFilter{}, models.Page{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, last, 1)
}

func TestCandidateRepository_SetStage(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	job := repotest.SeedJob(t, db, "Backend")
	repo := repositories.NewCandidateRepository(db)
	ctx := context.Background()
	c := &models.Candidate{Name: "Ann", Email: "ann@example.com", JobID: job.ID, Stage: models.StageScreen}
	require.NoError(t, repo.Create(ctx, c, "seed"))

	updated, err := repo.SetStage(ctx, c.ID, models.StageOffer, "rita")
	require.NoError(t, err)
	assert.Equal(t, models.StageOffer, updated.Stage)

	events, err := repo.GetTimeline(ctx, c.ID, models.SortAsc)
	require.NoError(t, err)
	require.Len(t, events, 2)
	ev := events[1]
	assert.Equal(t, models.EventStageChange, ev.Type)
	assert.Equal(t, "Moved from Screening to Offer", ev.Description)
	assert.Equal(t, "screen", ev.Metadata["from"])
	assert.Equal(t, "offer", ev.Metadata["to"])

	desc, err := repo.GetTimeline(ctx, c.ID, models.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, events[1].ID, desc[0].ID)
	assert.Equal(t, events[0].ID, desc[1].ID)

	t.Run("same stage appends nothing", func(t *testing.T) {
		again, err := repo.SetStage(ctx, c.ID, models.StageOffer, "rita")
		require.NoError(t, err)
		assert.Equal(t, models.StageOffer, again.Stage)

		events, err := repo.GetTimeline(ctx, c.ID, models.SortAsc)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("unknown stage is rejected", func(t *testing.T) {
		_, err := repo.SetStage(ctx, c.ID, models.Stage("archived"), "rita")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("unknown candidate", func(t *testing.T) {
		_, err := repo.SetStage(ctx, "ghost", models.StageHired, "rita")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.False(t, models.IsRetryable(err))
	})
}

func TestCandidateRepository_UpdateTimelineSideEffects(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	job := repotest.SeedJob(t, db, "Backend")
	repo := repositories.NewCandidateRepository(db)
	ctx := context.Background()
	c := &models.Candidate{Name: "Ann", Email: "ann@example.com", JobID: job.ID}
	require.NoError(t, repo.Create(ctx, c, "seed"))

	stage := models.StageTech
	notes := "Solid take-home"
	title := "Staff Engineer"
	updated, err := repo.Update(ctx, c.ID, models.CandidatePatch{Stage: &stage, Notes: &notes, CurrentTitle: &title}, "rita")
	require.NoError(t, err)
	assert.Equal(t, models.StageTech, updated.Stage)
	assert.Equal(t, "Solid take-home", updated.Notes)
	assert.Equal(t, "Staff Engineer", updated.CurrentTitle)

	events, err := repo.GetTimeline(ctx, c.ID, models.SortAsc)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.EventApplied, events[0].Type)
	assert.Equal(t, models.EventStageChange, events[1].Type)
	assert.Equal(t, models.EventNoteAdded, events[2].Type)

	badEmail := "nope"
	_, err = repo.Update(ctx, c.ID, models.CandidatePatch{Email: &badEmail}, "rita")
	assert.ErrorIs(t, err, models.ErrValidation)

	stored, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", stored.Email)
}

func TestCandidateRepository_GetTimelineErrors(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	repo := repositories.NewCandidateRepository(db)

	_, err := repo.GetTimeline(context.Background(), "ghost", models.SortAsc)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.GetTimeline(context.Background(), "ghost", models.SortOrder(""))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCandidateRepository_FindByIDs(t *testing.T) {
	t.Parallel()

	db := repotest.NewDB(t)
	job := repotest.SeedJob(t, db, "Backend")
	repo := repositories.NewCandidateRepository(db)
	a := repotest.SeedCandidate(t, db, job.ID, "A", models.StageApplied, 0)
	b := repotest.SeedCandidate(t, db, job.ID, "B", models.StageApplied, time.Minute)

	got, err := repo.FindByIDs(context.Background(), []string{b.ID, a.ID, "ghost"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)

	none, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
