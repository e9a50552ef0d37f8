package kanban

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talentflow/internal/models"
)

type committerFunc func(ctx context.Context, id string, stage models.Stage) (*models.Candidate, error)

func (f committerFunc) CommitStageChange(ctx context.Context, id string, stage models.Stage) (*models.Candidate, error) {
	return f(ctx, id, stage)
}

func newDragFixture(t *testing.T, commit committerFunc) (*DragController, *int) {
	t.Helper()

	view := NewBoardView([]models.Candidate{
		candidate("a", "Ann", models.StageApplied),
		candidate("b", "Bob", models.StageTech),
	}, models.AllStages())

	calls := 0
	if commit == nil {
		commit = func(_ context.Context, id string, stage models.Stage) (*models.Candidate, error) {
			c, _ := view.Candidate(id)
			c.Stage = stage
			return &c, nil
		}
	}
	counted := committerFunc(func(ctx context.Context, id string, stage models.Stage) (*models.Candidate, error) {
		calls++
		return commit(ctx, id, stage)
	})
	return NewDragController(view, counted, DefaultActivationDistance), &calls
}

func startDrag(t *testing.T, d *DragController, id string) {
	t.Helper()
	require.NoError(t, d.PickUp(id, Point{X: 10, Y: 10}))
	require.Equal(t, DragDragging, d.Move(Point{X: 30, Y: 10}))
}

func TestDrag_ActivationDistance(t *testing.T) {
	t.Parallel()

	d, calls := newDragFixture(t, nil)

	require.NoError(t, d.PickUp("a", Point{X: 0, Y: 0}))
	assert.Equal(t, DragIdle, d.Move(Point{X: 3, Y: 4}))
	assert.Equal(t, DragIdle, d.State())

	// A click without travel drops as a cancel.
	res, err := d.Drop(context.Background(), &DropTarget{Kind: TargetColumn, Stage: models.StageHired})
	require.NoError(t, err)
	assert.Equal(t, DropCancelled, res.Outcome)
	assert.Zero(t, *calls)

	require.NoError(t, d.PickUp("a", Point{X: 0, Y: 0}))
	assert.Equal(t, DragDragging, d.Move(Point{X: 6, Y: 8}))
}

func TestDrag_PickUpUnknownCandidate(t *testing.T) {
	t.Parallel()

	d, _ := newDragFixture(t, nil)
	err := d.PickUp("ghost", Point{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDrag_SameStageIsNoop(t *testing.T) {
	t.Parallel()

	d, calls := newDragFixture(t, nil)
	startDrag(t, d, "a")

	target := ColumnTarget(models.StageApplied)
	res, err := d.Drop(context.Background(), &target)

	require.NoError(t, err)
	assert.Equal(t, DropNoop, res.Outcome)
	assert.Zero(t, *calls)
	assert.Equal(t, DragIdle, d.State())
}

func TestDrag_CardTargetResolvesOwningStage(t *testing.T) {
	t.Parallel()

	d, calls := newDragFixture(t, nil)
	startDrag(t, d, "a")

	stage, ok := d.Over(CardTarget("b"))
	require.True(t, ok)
	assert.Equal(t, models.StageTech, stage)
	assert.Equal(t, models.StageTech, d.Hovered())

	target := CardTarget("b")
	res, err := d.Drop(context.Background(), &target)

	require.NoError(t, err)
	assert.Equal(t, DropCommitted, res.Outcome)
	assert.Equal(t, models.StageApplied, res.From)
	assert.Equal(t, models.StageTech, res.To)
	require.NotNil(t, res.Candidate)
	assert.Equal(t, models.StageTech, res.Candidate.Stage)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, DragIdle, d.State())
}

func TestDrag_UnresolvableTargetCancels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target *DropTarget
	}{
		{name: "no target", target: nil},
		{name: "unknown card", target: &DropTarget{Kind: TargetCard, CandidateID: "ghost"}},
		{name: "unknown column", target: &DropTarget{Kind: TargetColumn, Stage: "archive"}},
		{name: "zero target", target: &DropTarget{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, calls := newDragFixture(t, nil)
			startDrag(t, d, "a")

			res, err := d.Drop(context.Background(), tt.target)
			require.NoError(t, err)
			assert.Equal(t, DropCancelled, res.Outcome)
			assert.Zero(t, *calls)
			assert.Equal(t, DragIdle, d.State())
		})
	}
}

func TestDrag_CancelReturnsToIdle(t *testing.T) {
	t.Parallel()

	d, calls := newDragFixture(t, nil)
	startDrag(t, d, "a")

	require.NoError(t, d.Cancel())
	assert.Equal(t, DragIdle, d.State())
	_, _, active := d.Active()
	assert.False(t, active)
	assert.Zero(t, *calls)
}

func TestDrag_SecondPickUpWhileDragging(t *testing.T) {
	t.Parallel()

	d, _ := newDragFixture(t, nil)
	startDrag(t, d, "a")

	assert.ErrorIs(t, d.PickUp("b", Point{}), ErrDragActive)
}

func TestDrag_CommittingRejectsCancel(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	d, _ := newDragFixture(t, func(_ context.Context, id string, stage models.Stage) (*models.Candidate, error) {
		close(entered)
		<-release
		return nil, models.StorageError("set stage", errors.New("boom"))
	})
	startDrag(t, d, "a")

	type dropped struct {
		res DropResult
		err error
	}
	done := make(chan dropped, 1)
	go func() {
		target := ColumnTarget(models.StageOffer)
		res, err := d.Drop(context.Background(), &target)
		done <- dropped{res, err}
	}()

	<-entered
	assert.Equal(t, DragCommitting, d.State())
	assert.ErrorIs(t, d.Cancel(), ErrCommitInProgress)
	assert.ErrorIs(t, d.PickUp("b", Point{}), ErrCommitInProgress)
	close(release)

	out := <-done
	assert.ErrorIs(t, out.err, models.ErrStorageFailure)
	assert.Equal(t, DropFailed, out.res.Outcome)
	assert.Equal(t, DragIdle, d.State())
}

func TestDragState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", DragIdle.String())
	assert.Equal(t, "dragging", DragDragging.String())
	assert.Equal(t, "committing", DragCommitting.String())
	assert.Equal(t, "DragState(9)", DragState(9).String())
}
