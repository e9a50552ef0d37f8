package models

type CreateCandidateRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	ResumeURL    string   `json:"resumeUrl"`
	ProfileURL   string   `json:"profileUrl"`
	CurrentTitle string   `json:"currentTitle"`
	Skills       []string `json:"skills"`
	Stage        Stage    `json:"stage"`
	JobID        string   `json:"jobId"`
	Notes        string   `json:"notes"`
}

type CreateJobRequest struct {
	Title       string    `json:"title"`
	Status      JobStatus `json:"status"`
	Department  string    `json:"department"`
	Tags        []string  `json:"tags"`
	Description string    `json:"description"`
}

type ReorderJobRequest struct {
	FromOrder int `json:"fromOrder"`
	ToOrder   int `json:"toOrder"`
}

type SubmitAssessmentRequest struct {
	CandidateID string         `json:"candidateId"`
	Answers     map[string]any `json:"answers"`
}

// MoveRequest is the one-shot drag and drop: either a column (TargetStage) or
// the card the candidate was dropped on (OverCandidateID).
type MoveRequest struct {
	CandidateID     string `json:"candidateId"`
	TargetStage     Stage  `json:"targetStage,omitempty"`
	OverCandidateID string `json:"overCandidateId,omitempty"`
	JobID           string `json:"jobId,omitempty"`
}

type UploadResponse struct {
	ID           string       `json:"id"`
	CandidateID  string       `json:"candidateId"`
	Filename     string       `json:"filename"`
	OriginalName string       `json:"originalName"`
	Status       ResumeStatus `json:"status"`
}

type CandidateMatch struct {
	Candidate Candidate `json:"candidate"`
	Score     float32   `json:"score"`
	Excerpt   string    `json:"excerpt,omitempty"`
}
