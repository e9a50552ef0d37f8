package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/talentflow/internal/kanban"
	"alfredoptarigan/talentflow/internal/models"
	"alfredoptarigan/talentflow/internal/repositories"
)

// NotificationFeed is the read side of the notification sink.
type NotificationFeed interface {
	Recent(limit int) []kanban.Notification
}

type BoardHandler struct {
	engine        *kanban.Engine
	jobs          repositories.JobRepository
	notifications NotificationFeed
}

func NewBoardHandler(engine *kanban.Engine, jobs repositories.JobRepository, notifications NotificationFeed) *BoardHandler {
	return &BoardHandler{engine: engine, jobs: jobs, notifications: notifications}
}

func (h *BoardHandler) HandleStages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": models.StageRegistry()})
}

// HandleBoard serves GET /board?jobId=&search=&stage=. The job, when given,
// and the candidates are loaded concurrently.
func (h *BoardHandler) HandleBoard(c *fiber.Ctx) error {
	stage, err := stageFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	bc := kanban.BoardContext{
		JobID:  c.Query("jobId"),
		Search: c.Query("search"),
		Stage:  stage,
	}

	var (
		job   *models.Job
		board *kanban.Board
	)
	g, ctx := errgroup.WithContext(c.UserContext())
	if bc.JobID != "" {
		g.Go(func() error {
			var err error
			job, err = h.jobs.FindByID(ctx, bc.JobID)
			return err
		})
	}
	g.Go(func() error {
		var err error
		board, err = h.engine.OpenBoard(ctx, bc)
		return err
	})
	if err := g.Wait(); err != nil {
		return respondError(c, err)
	}

	columns := board.Columns()
	total := 0
	for _, col := range columns {
		total += col.Count
	}
	bctx := board.Context()
	return c.JSON(fiber.Map{
		"kind":    bctx.Kind,
		"jobId":   bctx.JobID,
		"job":     job,
		"search":  bctx.Search,
		"stage":   bctx.Stage,
		"total":   total,
		"columns": columns,
	})
}

// HandleMove drops a candidate onto a column or onto another card.
func (h *BoardHandler) HandleMove(c *fiber.Ctx) error {
	var req models.MoveRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	var target kanban.DropTarget
	switch {
	case req.CandidateID == "":
		return respondError(c, badRequest("candidateId", "required"))
	case req.TargetStage != "":
		target = kanban.ColumnTarget(req.TargetStage)
	case req.OverCandidateID != "":
		target = kanban.CardTarget(req.OverCandidateID)
	default:
		return respondError(c, badRequest("targetStage", "targetStage or overCandidateId is required"))
	}
	if target.Kind == kanban.TargetColumn && !target.Stage.IsValid() {
		return respondError(c, badRequest("targetStage", "unknown stage "+string(target.Stage)))
	}

	ctx := kanban.WithActor(c.UserContext(), actorOf(c))
	board, err := h.engine.OpenBoard(ctx, kanban.BoardContext{JobID: req.JobID})
	if err != nil {
		return respondError(c, err)
	}

	result, err := board.Move(ctx, req.CandidateID, target)
	if err != nil {
		return respondError(c, err)
	}
	if result.Outcome == kanban.DropCancelled {
		return respondError(c, badRequest("overCandidateId", "drop target is not on the board"))
	}
	return c.JSON(result)
}

func (h *BoardHandler) HandleNotifications(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": h.notifications.Recent(limit)})
}
