package applicant

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var now = time.Now

// Normalize maps a source-specific payload onto the canonical Applicant.
// Unknown source labels use the generic mapping but keep the supplied label.
// It fails with an *InvalidPayloadError when name or email cannot be resolved.
func Normalize(sourceLabel string, payload map[string]any) (Applicant, error) {
	source, known := ParseSource(sourceLabel)

	label := string(source)
	if !known {
		label = strings.TrimSpace(sourceLabel)
	}

	m := mappings[source]
	fields := payload
	if m.scope != nil {
		fields = m.scope(payload)
	}

	a := Applicant{
		Name:       firstString(fields, m.name),
		Email:      firstString(fields, m.email),
		Phone:      firstString(fields, m.phone),
		ResumeText: firstString(fields, m.resumeText),
		ResumeURL:  firstString(fields, m.resumeURL),
		Source:     label,
		JobTitle:   firstString(fields, m.jobTitle),
		Experience: firstString(fields, m.experience),
		Skills:     firstList(fields, m.skills),
		Location:   firstString(fields, m.location),
		RawPayload: payload,
		ReceivedAt: now().UTC(),
	}

	var missing []string
	if a.Name == "" {
		missing = append(missing, "name")
	}
	if a.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return Applicant{}, &InvalidPayloadError{Source: label, Missing: missing, RawPayload: payload}
	}

	return a, nil
}

// NormalizeJSON decodes a raw request body before normalizing it. Bodies that
// are not JSON objects are reported as invalid payloads.
func NormalizeJSON(sourceLabel string, body []byte) (Applicant, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return Applicant{}, fmt.Errorf("%w: body is not a JSON object", ErrInvalidPayload)
	}
	return Normalize(sourceLabel, payload)
}

// SourceOf returns the source label embedded in a payload, if any.
func SourceOf(payload map[string]any) string {
	return valueAsString(payload["source"])
}
