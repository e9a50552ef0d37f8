package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type Routes struct {
	Candidates  *CandidateHandler
	Jobs        *JobHandler
	Assessments *AssessmentHandler
	Board       *BoardHandler
	Resumes     *ResumeHandler
	System      *SystemHandler
	Metrics     fiber.Handler
}

// Register mounts every endpoint under /api/v1.
func (r *Routes) Register(app *fiber.App, defaultActor string) {
	api := app.Group("/api/v1", ActorMiddleware(defaultActor))

	api.Get("/health", r.System.HandleHealth)
	if r.Metrics != nil {
		api.Get("/metrics", r.Metrics)
	}

	api.Get("/stages", r.Board.HandleStages)
	api.Get("/board", r.Board.HandleBoard)
	api.Post("/board/move", r.Board.HandleMove)
	api.Get("/notifications", r.Board.HandleNotifications)

	candidates := api.Group("/candidates")
	candidates.Get("/", r.Candidates.HandleList)
	candidates.Post("/", r.Candidates.HandleCreate)
	candidates.Get("/:id", r.Candidates.HandleGet)
	candidates.Patch("/:id", r.Candidates.HandleUpdate)
	candidates.Get("/:id/timeline", r.Candidates.HandleTimeline)
	candidates.Post("/:id/resume", r.Resumes.HandleUpload)

	api.Get("/resumes/:id", r.Resumes.HandleStatus)

	jobs := api.Group("/jobs")
	jobs.Get("/", r.Jobs.HandleList)
	jobs.Post("/", r.Jobs.HandleCreate)
	jobs.Get("/:id", r.Jobs.HandleGet)
	jobs.Patch("/:id", r.Jobs.HandleUpdate)
	jobs.Patch("/:id/reorder", r.Jobs.HandleReorder)
	jobs.Get("/:id/matches", r.Jobs.HandleMatches)

	assessments := api.Group("/assessments")
	assessments.Get("/:jobId", r.Assessments.HandleGet)
	assessments.Put("/:jobId", r.Assessments.HandlePut)
	assessments.Post("/:jobId/submit", r.Assessments.HandleSubmit)
}
