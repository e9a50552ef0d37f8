package kanban

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/talentflow/internal/metrics"
	"alfredoptarigan/talentflow/internal/models"
)

// BoardKind names the screen a board is rendered on. All kinds share the
// same transition rules; they differ only in which candidates they load.
type BoardKind string

const (
	BoardPipeline BoardKind = "pipeline" // every candidate, full page
	BoardJob      BoardKind = "job"      // one job's candidates
	BoardList     BoardKind = "list"     // list view with inline stage moves
)

func (k BoardKind) IsValid() bool {
	switch k {
	case BoardPipeline, BoardJob, BoardList:
		return true
	}
	return false
}

type BoardContext struct {
	Kind   BoardKind
	JobID  string
	Search string
	Stage  models.Stage
}

func (bc BoardContext) Validate() error {
	var errs []models.FieldError
	if !bc.Kind.IsValid() {
		errs = append(errs, models.FieldError{Field: "kind", Message: fmt.Sprintf("unknown board kind %q", bc.Kind)})
	}
	if bc.Kind == BoardJob && bc.JobID == "" {
		errs = append(errs, models.FieldError{Field: "jobId", Message: "required for a job board"})
	}
	if bc.Stage != "" && !bc.Stage.IsValid() {
		errs = append(errs, models.FieldError{Field: "stage", Message: fmt.Sprintf("unknown stage %q", bc.Stage)})
	}
	return models.NewValidationErrors(errs)
}

type EngineConfig struct {
	ActivationDistance float64
	DefaultActor       string
	Metrics            *metrics.Metrics
}

// Engine opens boards. Every board it opens shares one in-flight guard, so
// a candidate can have at most one pending transition process-wide.
type Engine struct {
	store    CandidateStore
	notifier Notifier
	inflight *InFlight
	cfg      EngineConfig
	log      *zap.Logger
	stages   []models.Stage
}

func NewEngine(store CandidateStore, notifier Notifier, cfg EngineConfig, log *zap.Logger) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ActivationDistance <= 0 {
		cfg.ActivationDistance = DefaultActivationDistance
	}
	if cfg.DefaultActor == "" {
		cfg.DefaultActor = "system"
	}
	return &Engine{
		store:    store,
		notifier: notifier,
		inflight: NewInFlight(),
		cfg:      cfg,
		log:      log,
		stages:   models.AllStages(),
	}
}

func (e *Engine) InFlight() *InFlight {
	return e.inflight
}

// OpenBoard loads the candidates of bc through the store and returns a board
// over them with bc's search and stage filter applied.
func (e *Engine) OpenBoard(ctx context.Context, bc BoardContext) (*Board, error) {
	if bc.Kind == "" {
		bc.Kind = BoardPipeline
		if bc.JobID != "" {
			bc.Kind = BoardJob
		}
	}
	if err := bc.Validate(); err != nil {
		return nil, err
	}

	candidates, err := e.store.FindAll(ctx, models.CandidateFilter{JobID: bc.JobID})
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}

	view := NewBoardView(candidates, e.stages)
	view.SetFilter(bc.Search, bc.Stage)

	ctrl := NewOptimisticController(e.store, view, e.inflight, e.notifier, e.cfg.Metrics, e.log.With(zap.String("board", string(bc.Kind))))
	ctrl.defaultActor = e.cfg.DefaultActor

	return &Board{
		ctx:        bc,
		view:       view,
		store:      e.store,
		controller: ctrl,
		activation: e.cfg.ActivationDistance,
	}, nil
}

// Board is one rendered board: its cached view, the optimistic controller
// writing through it, and the drag sessions started on it.
type Board struct {
	ctx        BoardContext
	view       *BoardView
	store      CandidateStore
	controller *OptimisticController
	activation float64
}

func (b *Board) Context() BoardContext { return b.ctx }

func (b *Board) View() *BoardView { return b.view }

func (b *Board) Columns() []Column { return b.view.Columns() }

func (b *Board) Controller() *OptimisticController { return b.controller }

// NewDrag starts a drag session on this board.
func (b *Board) NewDrag() *DragController {
	return NewDragController(b.view, b.controller, b.activation)
}

// SetFilter changes search and stage filter and regroups the view.
func (b *Board) SetFilter(search string, stage models.Stage) error {
	if stage != "" && !stage.IsValid() {
		return models.NewValidationError("stage", fmt.Sprintf("unknown stage %q", stage))
	}
	b.ctx.Search, b.ctx.Stage = search, stage
	b.view.SetFilter(search, stage)
	return nil
}

// Refresh reloads the candidate list from the store.
func (b *Board) Refresh(ctx context.Context) error {
	candidates, err := b.store.FindAll(ctx, models.CandidateFilter{JobID: b.ctx.JobID})
	if err != nil {
		return fmt.Errorf("failed to refresh board: %w", err)
	}
	b.view.Replace(candidates)
	return nil
}

// Move performs a complete pick-up, drag and drop of candidateID onto
// target in one call.
func (b *Board) Move(ctx context.Context, candidateID string, target DropTarget) (DropResult, error) {
	drag := b.NewDrag()
	if err := drag.PickUp(candidateID, Point{}); err != nil {
		return DropResult{}, err
	}
	if drag.Move(Point{X: b.activation, Y: b.activation}) != DragDragging {
		return DropResult{}, fmt.Errorf("drag of %s did not start", candidateID)
	}
	drag.Over(target)
	return drag.Drop(ctx, &target)
}
