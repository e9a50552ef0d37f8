package kanban

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"alfredoptarigan/talentflow/internal/models"
)

// DefaultActivationDistance is how far, in pixels, the pointer must travel
// after a pick-up before it counts as a drag.
const DefaultActivationDistance = 8.0

var (
	ErrDragActive       = errors.New("a drag is already active")
	ErrCommitInProgress = errors.New("drop is being committed")
)

type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragCommitting
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragDragging:
		return "dragging"
	case DragCommitting:
		return "committing"
	default:
		return fmt.Sprintf("DragState(%d)", int(s))
	}
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type TargetKind int

const (
	TargetColumn TargetKind = iota + 1
	TargetCard
)

// DropTarget is whatever sits under the pointer: a stage column or another
// candidate's card.
type DropTarget struct {
	Kind        TargetKind
	Stage       models.Stage
	CandidateID string
}

func ColumnTarget(stage models.Stage) DropTarget {
	return DropTarget{Kind: TargetColumn, Stage: stage}
}

func CardTarget(candidateID string) DropTarget {
	return DropTarget{Kind: TargetCard, CandidateID: candidateID}
}

type DropOutcome string

const (
	DropCancelled DropOutcome = "cancelled"
	DropNoop      DropOutcome = "noop"
	DropCommitted DropOutcome = "committed"
	DropFailed    DropOutcome = "failed"
)

type DropResult struct {
	Outcome   DropOutcome       `json:"outcome"`
	From      models.Stage      `json:"from,omitempty"`
	To        models.Stage      `json:"to,omitempty"`
	Candidate *models.Candidate `json:"candidate,omitempty"`
}

// Committer persists a stage change; OptimisticController is the production
// implementation.
type Committer interface {
	CommitStageChange(ctx context.Context, candidateID string, target models.Stage) (*models.Candidate, error)
}

// DragController runs one drag gesture at a time:
// Idle -> Dragging -> {Committing, Idle}.
type DragController struct {
	mu         sync.Mutex
	view       *BoardView
	committer  Committer
	activation float64

	state       DragState
	armed       bool
	candidateID string
	origin      Point
	startStage  models.Stage
	snapshot    map[string]models.Stage
	over        models.Stage
}

func NewDragController(view *BoardView, committer Committer, activationDistance float64) *DragController {
	if activationDistance < 0 {
		activationDistance = DefaultActivationDistance
	}
	return &DragController{
		view:       view,
		committer:  committer,
		activation: activationDistance,
	}
}

func (d *DragController) State() DragState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Active returns the candidate being dragged and its stage at drag start.
func (d *DragController) Active() (string, models.Stage, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == DragIdle {
		return "", "", false
	}
	return d.candidateID, d.startStage, true
}

// PickUp arms a drag of a visible candidate at p. The controller stays Idle
// until the pointer moves past the activation distance.
func (d *DragController) PickUp(candidateID string, p Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case DragCommitting:
		return ErrCommitInProgress
	case DragDragging:
		return ErrDragActive
	}
	if _, ok := d.view.StageIndex()[candidateID]; !ok {
		return fmt.Errorf("candidate %s is not on the board: %w", candidateID, models.ErrNotFound)
	}
	d.armed = true
	d.candidateID = candidateID
	d.origin = p
	return nil
}

// Move reports pointer movement. Crossing the activation distance starts the
// drag and freezes the candidate-to-column snapshot used to resolve targets.
func (d *DragController) Move(p Point) DragState {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != DragIdle || !d.armed {
		return d.state
	}
	if math.Hypot(p.X-d.origin.X, p.Y-d.origin.Y) < d.activation {
		return d.state
	}

	d.snapshot = d.view.StageIndex()
	stage, ok := d.snapshot[d.candidateID]
	if !ok {
		d.resetLocked()
		return d.state
	}
	d.startStage = stage
	d.over = ""
	d.state = DragDragging
	return d.state
}

// Hovered is the stage last resolved by Over, empty when none.
func (d *DragController) Hovered() models.Stage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.over
}

// Over resolves the element under the pointer to a stage.
func (d *DragController) Over(target DropTarget) (models.Stage, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != DragDragging {
		return "", false
	}
	stage, ok := d.resolveLocked(target)
	if ok {
		d.over = stage
	} else {
		d.over = ""
	}
	return stage, ok
}

func (d *DragController) resolveLocked(target DropTarget) (models.Stage, bool) {
	switch target.Kind {
	case TargetColumn:
		if target.Stage.IsValid() {
			return target.Stage, true
		}
	case TargetCard:
		stage, ok := d.snapshot[target.CandidateID]
		return stage, ok
	}
	return "", false
}

// Drop ends the gesture. A nil or unresolvable target cancels, a drop on the
// starting column is a no-op, anything else is committed.
func (d *DragController) Drop(ctx context.Context, target *DropTarget) (DropResult, error) {
	d.mu.Lock()
	if d.state == DragCommitting {
		d.mu.Unlock()
		return DropResult{}, ErrCommitInProgress
	}
	if d.state != DragDragging {
		d.resetLocked()
		d.mu.Unlock()
		return DropResult{Outcome: DropCancelled}, nil
	}

	from := d.startStage
	var to models.Stage
	ok := false
	if target != nil {
		to, ok = d.resolveLocked(*target)
	}
	if !ok {
		d.resetLocked()
		d.mu.Unlock()
		return DropResult{Outcome: DropCancelled, From: from}, nil
	}
	if to == from {
		d.resetLocked()
		d.mu.Unlock()
		return DropResult{Outcome: DropNoop, From: from, To: to}, nil
	}

	id := d.candidateID
	d.state = DragCommitting
	d.mu.Unlock()

	updated, err := d.committer.CommitStageChange(ctx, id, to)

	d.mu.Lock()
	d.resetLocked()
	d.mu.Unlock()

	if err != nil {
		return DropResult{Outcome: DropFailed, From: from, To: to}, err
	}
	return DropResult{Outcome: DropCommitted, From: from, To: to, Candidate: updated}, nil
}

// Cancel abandons the gesture without touching anything. A drop that is
// already being committed cannot be cancelled.
func (d *DragController) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == DragCommitting {
		return ErrCommitInProgress
	}
	d.resetLocked()
	return nil
}

func (d *DragController) resetLocked() {
	d.state = DragIdle
	d.armed = false
	d.candidateID = ""
	d.startStage = ""
	d.snapshot = nil
	d.over = ""
}
