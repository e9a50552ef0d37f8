package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talentflow/internal/kanban"
	"alfredoptarigan/talentflow/internal/models"
	"alfredoptarigan/talentflow/internal/repositories"
)

type CandidateHandler struct {
	candidates repositories.CandidateRepository
	inflight   *kanban.InFlight
}

// NewCandidateHandler shares inflight with the board engine so a stage change
// through PATCH never overlaps a board move of the same candidate.
func NewCandidateHandler(candidates repositories.CandidateRepository, inflight *kanban.InFlight) *CandidateHandler {
	if inflight == nil {
		inflight = kanban.NewInFlight()
	}
	return &CandidateHandler{candidates: candidates, inflight: inflight}
}

// HandleList serves GET /candidates?search=&stage=&jobId=&page=&pageSize=.
func (h *CandidateHandler) HandleList(c *fiber.Ctx) error {
	stage, err := stageFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	page, err := pageFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	filter := models.CandidateFilter{
		Search: c.Query("search"),
		Stage:  stage,
		JobID:  c.Query("jobId"),
	}
	data, pagination, err := h.candidates.FindPage(c.UserContext(), filter, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.PagedResponse[models.Candidate]{Data: data, Pagination: pagination})
}

func (h *CandidateHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateCandidateRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	candidate := &models.Candidate{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		ResumeURL:    req.ResumeURL,
		ProfileURL:   req.ProfileURL,
		CurrentTitle: req.CurrentTitle,
		Skills:       req.Skills,
		Stage:        req.Stage,
		JobID:        req.JobID,
		Notes:        req.Notes,
	}
	if err := h.candidates.Create(c.UserContext(), candidate, actorOf(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(candidate)
}

func (h *CandidateHandler) HandleGet(c *fiber.Ctx) error {
	candidate, err := h.candidates.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(candidate)
}

// HandleUpdate applies a partial update. A stage change through this endpoint
// is not optimistic but still holds the candidate's in-flight slot, so it is
// rejected with 409 while a board move of the same candidate is committing.
func (h *CandidateHandler) HandleUpdate(c *fiber.Ctx) error {
	var patch models.CandidatePatch
	if err := parseBody(c, &patch); err != nil {
		return respondError(c, err)
	}
	if patch.IsEmpty() {
		return respondError(c, badRequest("body", "no fields to update"))
	}

	id := c.Params("id")
	if patch.Stage != nil {
		if !h.inflight.Acquire(id) {
			return respondError(c, fmt.Errorf("candidate %s: %w", id, models.ErrTransitionInFlight))
		}
		defer h.inflight.Release(id)
	}

	candidate, err := h.candidates.Update(c.UserContext(), id, patch, actorOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(candidate)
}

// HandleTimeline serves GET /candidates/:id/timeline?order=asc|desc.
func (h *CandidateHandler) HandleTimeline(c *fiber.Ctx) error {
	order := models.SortAsc
	if raw := c.Query("order"); raw != "" {
		parsed, err := models.ParseSortOrder(raw)
		if err != nil {
			return respondError(c, err)
		}
		order = parsed
	}

	events, err := h.candidates.GetTimeline(c.UserContext(), c.Params("id"), order)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": events})
}
