package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/talentflow/internal/models"
	"alfredoptarigan/talentflow/internal/repositories"
	"alfredoptarigan/talentflow/internal/services"
)

type ResumeHandler struct {
	candidates repositories.CandidateRepository
	documents  repositories.DocumentRepository
	storage    services.StorageService
	worker     services.Worker
	log        *zap.Logger
}

func NewResumeHandler(
	candidates repositories.CandidateRepository,
	documents repositories.DocumentRepository,
	storage services.StorageService,
	worker services.Worker,
	log *zap.Logger,
) *ResumeHandler {
	return &ResumeHandler{
		candidates: candidates,
		documents:  documents,
		storage:    storage,
		worker:     worker,
		log:        log,
	}
}

// HandleUpload stores the "resume" PDF of a candidate and queues it for
// processing.
func (h *ResumeHandler) HandleUpload(c *fiber.Ctx) error {
	ctx := c.UserContext()
	candidate, err := h.candidates.FindByID(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return respondError(c, badRequest("resume", "a PDF file is required in the 'resume' field"))
	}

	filename, path, err := h.storage.SaveResume(file, candidate.ID)
	if err != nil {
		return respondError(c, err)
	}

	doc := &models.ResumeDocument{
		CandidateID:      candidate.ID,
		Filename:         filename,
		OriginalFilename: file.Filename,
		FilePath:         path,
	}
	if err := h.documents.Create(ctx, doc); err != nil {
		if derr := h.storage.DeleteFile(filename); derr != nil {
			h.log.Warn("failed to clean up resume file", zap.String("file", filename), zap.Error(derr))
		}
		return respondError(c, err)
	}

	h.worker.Enqueue(doc.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.UploadResponse{
		ID:           doc.ID,
		CandidateID:  candidate.ID,
		Filename:     doc.Filename,
		OriginalName: doc.OriginalFilename,
		Status:       doc.Status,
	})
}

func (h *ResumeHandler) HandleStatus(c *fiber.Ctx) error {
	doc, err := h.documents.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}
