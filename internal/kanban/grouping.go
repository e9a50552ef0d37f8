package kanban

import (
	"alfredoptarigan/talentflow/internal/models"
)

// Grouped maps every stage of a board to its candidates in fetch order.
type Grouped map[models.Stage][]models.Candidate

// GroupByStage buckets candidates by stage. Every stage in stages is present
// as a key, empty or not, and candidates keep their input order. Candidates
// whose stage is not in stages are left out.
func GroupByStage(candidates []models.Candidate, stages []models.Stage) Grouped {
	out := make(Grouped, len(stages))
	for _, s := range stages {
		out[s] = []models.Candidate{}
	}
	for _, c := range candidates {
		bucket, ok := out[c.Stage]
		if !ok {
			continue
		}
		out[c.Stage] = append(bucket, c)
	}
	return out
}

// StageOf returns the stage whose bucket holds candidateID.
func (g Grouped) StageOf(candidateID string) (models.Stage, bool) {
	for stage, cs := range g {
		for i := range cs {
			if cs[i].ID == candidateID {
				return stage, true
			}
		}
	}
	return "", false
}

// Total counts the grouped candidates across all stages.
func (g Grouped) Total() int {
	n := 0
	for _, cs := range g {
		n += len(cs)
	}
	return n
}

type Column struct {
	Stage      models.Stage       `json:"stage"`
	Name       string             `json:"name"`
	Color      string             `json:"color"`
	Count      int                `json:"count"`
	Candidates []models.Candidate `json:"candidates"`
}

// Columns lays the grouping out left to right in stages order.
func Columns(g Grouped, stages []models.Stage) []Column {
	cols := make([]Column, 0, len(stages))
	for _, s := range stages {
		cs := g[s]
		if cs == nil {
			cs = []models.Candidate{}
		}
		cols = append(cols, Column{
			Stage:      s,
			Name:       s.DisplayName(),
			Color:      s.ColorToken(),
			Count:      len(cs),
			Candidates: cs,
		})
	}
	return cols
}
