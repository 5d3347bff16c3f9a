package scoring

import (
	"strings"

	_ "embed"
)

// SystemPrompt is sent as the system instruction with every scoring request.
const SystemPrompt = "You are an expert recruitment evaluator. You assess candidates objectively and answer in JSON only."

const (
	// MaxResumeChars bounds how much resume text is embedded into a prompt.
	MaxResumeChars = 3000
	// GenericRole is used when the applicant did not name a position.
	GenericRole = "General Technology Role"
)

//go:embed prompt.md
var promptTemplate string

// BuildPrompt renders the user prompt for a resume and an optional job title.
func BuildPrompt(resumeText, jobTitle string) string {
	role := strings.TrimSpace(jobTitle)
	if role == "" {
		role = GenericRole
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "RESUME:\n{{RESUME_TEXT}}\n\nTARGET POSITION: {{TARGET_ROLE}}\n\nJSON Response:"
	}

	// Resume text is substituted last and never re-scanned for placeholders.
	prompt := strings.ReplaceAll(template, "{{TARGET_ROLE}}", role)
	return strings.Replace(prompt, "{{RESUME_TEXT}}", truncateRunes(resumeText, MaxResumeChars), 1)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
