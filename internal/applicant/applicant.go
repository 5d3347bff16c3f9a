package applicant

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPayload is returned (wrapped) when a submission lacks the fields
// required to build an applicant record.
var ErrInvalidPayload = errors.New("invalid payload")

// Applicant is the canonical record built from any intake source.
type Applicant struct {
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
	ResumeText string         `json:"resume_text"`
	ResumeURL  string         `json:"resume_url"`
	Source     string         `json:"source"`
	JobTitle   string         `json:"job_title"`
	Experience string         `json:"experience"`
	Skills     []string       `json:"skills"`
	Location   string         `json:"location"`
	RawPayload map[string]any `json:"raw_payload"`
	ReceivedAt time.Time      `json:"received_at"`
}

// InvalidPayloadError lists the required fields that could not be resolved.
// RawPayload is the rejected submission, kept for audit.
type InvalidPayloadError struct {
	Source     string
	Missing    []string
	RawPayload map[string]any
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid payload from %s: missing %s", e.Source, strings.Join(e.Missing, ", "))
}

func (e *InvalidPayloadError) Unwrap() error {
	return ErrInvalidPayload
}
