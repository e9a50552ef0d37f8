package kanban

import (
	"sync"

	"alfredoptarigan/talentflow/internal/models"
)

// BoardView is the cached, derived state of one board: the candidates of the
// board context in fetch order, the active search/stage filter and the
// grouping computed from both. The store stays the source of truth.
type BoardView struct {
	mu         sync.RWMutex
	stages     []models.Stage
	candidates []models.Candidate
	index      map[string]int
	filter     models.CandidateFilter
	grouped    Grouped
}

func NewBoardView(candidates []models.Candidate, stages []models.Stage) *BoardView {
	v := &BoardView{stages: append([]models.Stage(nil), stages...)}
	v.Replace(candidates)
	return v
}

// Replace swaps in a freshly fetched candidate list.
func (v *BoardView) Replace(candidates []models.Candidate) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.candidates = make([]models.Candidate, len(candidates))
	v.index = make(map[string]int, len(candidates))
	for i := range candidates {
		v.candidates[i] = candidates[i].Clone()
		v.index[candidates[i].ID] = i
	}
	v.regroup()
}

// SetFilter changes the search term and stage filter and regroups.
func (v *BoardView) SetFilter(search string, stage models.Stage) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.filter.Search = search
	v.filter.Stage = stage
	v.regroup()
}

func (v *BoardView) regroup() {
	visible := make([]models.Candidate, 0, len(v.candidates))
	for i := range v.candidates {
		if v.filter.Matches(&v.candidates[i]) {
			visible = append(visible, v.candidates[i])
		}
	}
	v.grouped = GroupByStage(visible, v.stages)
}

func (v *BoardView) Stages() []models.Stage {
	return append([]models.Stage(nil), v.stages...)
}

// Candidate returns a deep copy of the cached record.
func (v *BoardView) Candidate(id string) (models.Candidate, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	i, ok := v.index[id]
	if !ok {
		return models.Candidate{}, false
	}
	return v.candidates[i].Clone(), true
}

// Candidates returns deep copies of every cached record in fetch order,
// filtered or not.
func (v *BoardView) Candidates() []models.Candidate {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]models.Candidate, len(v.candidates))
	for i := range v.candidates {
		out[i] = v.candidates[i].Clone()
	}
	return out
}

// Grouped returns a copy of the current grouping.
func (v *BoardView) Grouped() Grouped {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make(Grouped, len(v.grouped))
	for stage, cs := range v.grouped {
		cp := make([]models.Candidate, len(cs))
		for i := range cs {
			cp[i] = cs[i].Clone()
		}
		out[stage] = cp
	}
	return out
}

func (v *BoardView) Columns() []Column {
	return Columns(v.Grouped(), v.stages)
}

// StageIndex maps each visible candidate to the column it sits in.
func (v *BoardView) StageIndex() map[string]models.Stage {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make(map[string]models.Stage, v.grouped.Total())
	for stage, cs := range v.grouped {
		for i := range cs {
			out[cs[i].ID] = stage
		}
	}
	return out
}

// ApplyStage optimistically moves a cached candidate to stage.
func (v *BoardView) ApplyStage(id string, stage models.Stage) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	i, ok := v.index[id]
	if !ok {
		return false
	}
	v.candidates[i].Stage = stage
	v.regroup()
	return true
}

// Restore puts a snapshot back exactly as it was taken. Only the snapshot's
// own record is touched.
func (v *BoardView) Restore(snapshot models.Candidate) {
	v.put(snapshot)
}

// Merge adopts a record returned by the store.
func (v *BoardView) Merge(updated models.Candidate) {
	v.put(updated)
}

func (v *BoardView) put(c models.Candidate) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if i, ok := v.index[c.ID]; ok {
		v.candidates[i] = c.Clone()
	} else {
		v.index[c.ID] = len(v.candidates)
		v.candidates = append(v.candidates, c.Clone())
	}
	v.regroup()
}
