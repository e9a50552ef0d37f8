package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"alfredoptarigan/talentflow/internal/models"
	"alfredoptarigan/talentflow/internal/repositories"
)

const (
	defaultMatchLimit = 10
	maxMatchLimit     = 50
	// Each candidate contributes several chunks; over-fetch before collapsing.
	chunksPerCandidate = 4
)

type MatchService interface {
	MatchCandidates(ctx context.Context, jobID string, limit int) ([]models.CandidateMatch, error)
}

type matchService struct {
	jobs       repositories.JobRepository
	candidates repositories.CandidateRepository
	gemini     GeminiService
	index      ResumeIndex
	prompts    *PromptBuilder
	log        *zap.Logger
}

func NewMatchService(
	jobs repositories.JobRepository,
	candidates repositories.CandidateRepository,
	gemini GeminiService,
	index ResumeIndex,
	log *zap.Logger,
) MatchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &matchService{
		jobs:       jobs,
		candidates: candidates,
		gemini:     gemini,
		index:      index,
		prompts:    NewPromptBuilder(),
		log:        log,
	}
}

// MatchCandidates ranks the job's applicants by the best cosine score of any
// of their resume chunks against the job description.
func (s *matchService) MatchCandidates(ctx context.Context, jobID string, limit int) ([]models.CandidateMatch, error) {
	if s.gemini == nil || s.index == nil {
		return nil, fmt.Errorf("resume matching: %w", models.ErrUnavailable)
	}
	switch {
	case limit <= 0:
		limit = defaultMatchLimit
	case limit > maxMatchLimit:
		limit = maxMatchLimit
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	query, err := s.gemini.GenerateEmbedding(ctx, s.prompts.BuildMatchQuery(job))
	if err != nil {
		return nil, err
	}
	hits, err := s.index.SearchByJob(ctx, query, job.ID, limit*chunksPerCandidate)
	if err != nil {
		return nil, err
	}

	best := bestPerCandidate(hits)
	if len(best) > limit {
		best = best[:limit]
	}

	ids := make([]string, 0, len(best))
	for _, hit := range best {
		ids = append(ids, hit.CandidateID)
	}
	found, err := s.candidates.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Candidate, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	matches := make([]models.CandidateMatch, 0, len(best))
	for _, hit := range best {
		c, ok := byID[hit.CandidateID]
		if !ok {
			// Indexed before the candidate was removed or moved to another job.
			s.log.Debug("skipping stale resume point", zap.String("candidate_id", hit.CandidateID))
			continue
		}
		matches = append(matches, models.CandidateMatch{
			Candidate: c,
			Score:     hit.Score,
			Excerpt:   excerpt(hit.Text, 280),
		})
	}
	return matches, nil
}

// bestPerCandidate keeps the highest scoring chunk of every candidate, sorted
// by score descending.
func bestPerCandidate(hits []SearchResult) []SearchResult {
	best := make(map[string]SearchResult, len(hits))
	for _, hit := range hits {
		if hit.CandidateID == "" {
			continue
		}
		if cur, ok := best[hit.CandidateID]; !ok || hit.Score > cur.Score {
			best[hit.CandidateID] = hit
		}
	}

	out := make([]SearchResult, 0, len(best))
	for _, hit := range best {
		out = append(out, hit)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CandidateID < out[j].CandidateID
	})
	return out
}

func excerpt(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
