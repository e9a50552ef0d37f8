package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"alfredoptarigan/talentflow/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSkillExtractionPrompt asks for the candidate's skills as a JSON object.
func (pb *PromptBuilder) BuildSkillExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an experienced technical recruiter reading a candidate's resume.

RESUME:
%s

List the concrete professional skills the candidate demonstrates: programming languages, frameworks, tools, platforms and domain expertise.
Use the short, common name of each skill (for example "Go", "PostgreSQL", "Kubernetes"). Do not include soft skills or job titles.

Return your response in the following JSON format:
{
  "skills": ["<skill>", "<skill>"]
}

Return at most 25 skills, most prominent first.`, resumeText)
}

// BuildMatchQuery is the text embedded to rank resumes against a job.
func (pb *PromptBuilder) BuildMatchQuery(job *models.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate qualified for the %s position", job.Title)
	if job.Department != "" {
		fmt.Fprintf(&b, " in %s", job.Department)
	}
	b.WriteString(".")
	if len(job.Tags) > 0 {
		fmt.Fprintf(&b, "\nRequired skills: %s.", strings.Join(job.Tags, ", "))
	}
	if d := strings.TrimSpace(job.Description); d != "" {
		fmt.Fprintf(&b, "\n%s", d)
	}
	return b.String()
}

// extractJSON pulls the JSON object or array out of a model response that
// may be wrapped in markdown.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	startArr := strings.Index(text, "[")
	endArr := strings.LastIndex(text, "]")

	switch {
	case startObj != -1 && endObj > startObj && (startArr == -1 || startObj < startArr):
		return text[startObj : endObj+1]
	case startArr != -1 && endArr > startArr:
		return text[startArr : endArr+1]
	}
	return strings.TrimSpace(text)
}

// parseSkills accepts {"skills": [...]} or a bare array and returns the
// normalized skill list.
func parseSkills(response string) ([]string, error) {
	raw := extractJSON(response)

	var obj struct {
		Skills []string `json:"skills"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return models.NormalizeSkills(obj.Skills), nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
	}
	return models.NormalizeSkills(arr), nil
}
