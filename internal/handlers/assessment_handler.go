package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talentflow/internal/models"
	"alfredoptarigan/talentflow/internal/repositories"
)

type AssessmentHandler struct {
	assessments repositories.AssessmentRepository
}

func NewAssessmentHandler(assessments repositories.AssessmentRepository) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

func (h *AssessmentHandler) HandleGet(c *fiber.Ctx) error {
	a, err := h.assessments.FindByJobID(c.UserContext(), c.Params("jobId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(a)
}

// HandlePut replaces the job's assessment with the request body.
func (h *AssessmentHandler) HandlePut(c *fiber.Ctx) error {
	var a models.Assessment
	if err := parseBody(c, &a); err != nil {
		return respondError(c, err)
	}
	a.JobID = c.Params("jobId")

	saved, err := h.assessments.Save(c.UserContext(), &a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(saved)
}

func (h *AssessmentHandler) HandleSubmit(c *fiber.Ctx) error {
	var req models.SubmitAssessmentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.CandidateID == "" {
		return respondError(c, badRequest("candidateId", "required"))
	}

	resp := &models.AssessmentResponse{
		JobID:       c.Params("jobId"),
		CandidateID: req.CandidateID,
		Answers:     req.Answers,
	}
	if err := h.assessments.SubmitResponse(c.UserContext(), resp, actorOf(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
