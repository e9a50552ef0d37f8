package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talentflow/internal/models"
	"alfredoptarigan/talentflow/internal/repositories"
	"alfredoptarigan/talentflow/internal/services"
)

type JobHandler struct {
	jobs    repositories.JobRepository
	matcher services.MatchService
}

func NewJobHandler(jobs repositories.JobRepository, matcher services.MatchService) *JobHandler {
	return &JobHandler{jobs: jobs, matcher: matcher}
}

func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	filter := models.JobFilter{Search: c.Query("search")}
	if raw := c.Query("status"); raw != "" {
		filter.Status = models.JobStatus(raw)
		if !filter.Status.IsValid() {
			return respondError(c, badRequest("status", "must be active or archived"))
		}
	}

	data, pagination, err := h.jobs.FindPage(c.UserContext(), filter, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.PagedResponse[models.Job]{Data: data, Pagination: pagination})
}

func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateJobRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	job := &models.Job{
		Title:       req.Title,
		Status:      req.Status,
		Department:  req.Department,
		Tags:        req.Tags,
		Description: req.Description,
	}
	if err := h.jobs.Create(c.UserContext(), job); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}

func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	job, err := h.jobs.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(job)
}

func (h *JobHandler) HandleUpdate(c *fiber.Ctx) error {
	var patch models.JobPatch
	if err := parseBody(c, &patch); err != nil {
		return respondError(c, err)
	}

	job, err := h.jobs.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(job)
}

func (h *JobHandler) HandleReorder(c *fiber.Ctx) error {
	var req models.ReorderJobRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	job, err := h.jobs.Reorder(c.UserContext(), c.Params("id"), req.FromOrder, req.ToOrder)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(job)
}

// HandleMatches serves GET /jobs/:id/matches?limit=.
func (h *JobHandler) HandleMatches(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return respondError(c, err)
	}

	matches, err := h.matcher.MatchCandidates(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": matches})
}
