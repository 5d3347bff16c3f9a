package applicant

import "strings"

// accessor resolves one candidate value from a payload.
type accessor func(payload map[string]any) any

type mapping struct {
	scope      func(payload map[string]any) map[string]any
	name       []accessor
	email      []accessor
	phone      []accessor
	resumeText []accessor
	resumeURL  []accessor
	jobTitle   []accessor
	experience []accessor
	skills     []accessor
	location   []accessor
}

func key(path string) accessor {
	return func(payload map[string]any) any {
		return lookup(payload, path)
	}
}

func keys(paths ...string) []accessor {
	accessors := make([]accessor, 0, len(paths))
	for _, path := range paths {
		accessors = append(accessors, key(path))
	}
	return accessors
}

// fullName joins a first and last name pair, yielding nil when both are empty.
func fullName(first, last string) accessor {
	return func(payload map[string]any) any {
		joined := strings.TrimSpace(valueAsString(lookup(payload, first)) + " " + valueAsString(lookup(payload, last)))
		if joined == "" {
			return nil
		}
		return joined
	}
}

// formKeys expands each question key into the spellings form builders produce.
func formKeys(labels ...string) []accessor {
	seen := make(map[string]bool)
	accessors := make([]accessor, 0, len(labels)*2)
	for _, label := range labels {
		for _, variant := range []string{label, strings.ToLower(label), titleCase(label)} {
			if seen[variant] {
				continue
			}
			seen[variant] = true
			accessors = append(accessors, func(payload map[string]any) any {
				return payload[variant]
			})
		}
	}
	return accessors
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formData(payload map[string]any) map[string]any {
	if nested, ok := payload["form_data"].(map[string]any); ok {
		return nested
	}
	return payload
}

var genericMapping = mapping{
	name:       append(keys("name"), fullName("firstName", "lastName"), fullName("first_name", "last_name")),
	email:      keys("email"),
	phone:      keys("phone", "mobile"),
	resumeText: keys("resume_text", "description", "notes"),
	resumeURL:  keys("resume_url", "cv_url"),
	jobTitle:   keys("job_title", "position"),
	experience: keys("experience", "years_experience"),
	skills:     keys("skills"),
	location:   keys("location", "city"),
}

var mappings = map[Source]mapping{
	SourceGeneric:  genericMapping,
	SourceLinkedIn: genericMapping,
	SourceFacebook: genericMapping,
	SourceBrevo: {
		name:       []accessor{fullName("first_name", "last_name"), key("name"), fullName("attributes.FIRSTNAME", "attributes.LASTNAME")},
		email:      keys("email", "attributes.EMAIL"),
		phone:      keys("phone", "mobile", "attributes.SMS"),
		resumeText: keys("message", "description"),
		resumeURL:  keys("resume_url"),
		jobTitle:   keys("job_title", "position", "attributes.JOB_TITLE"),
		experience: keys("experience"),
		skills:     keys("skills"),
		location:   keys("location", "city"),
	},
	SourceApollo: {
		name:       []accessor{key("name"), fullName("first_name", "last_name")},
		email:      keys("email"),
		phone:      keys("phone", "phone_number"),
		resumeText: keys("description", "summary", "headline"),
		resumeURL:  keys("linkedin_url"),
		jobTitle:   keys("title", "job_title"),
		experience: keys("experience", "employment_history"),
		skills:     keys("skills"),
		location:   keys("location", "city"),
	},
	SourceGoogleForms: {
		scope:      formData,
		name:       formKeys("name", "Full Name"),
		email:      formKeys("email", "Email Address"),
		phone:      formKeys("phone", "Phone Number"),
		resumeText: formKeys("resume_text", "resume", "Cover Letter"),
		resumeURL:  formKeys("resume_url", "Resume Link"),
		jobTitle:   formKeys("job_title", "position", "Position Applied For"),
		experience: formKeys("experience", "Experience Level"),
		skills:     formKeys("skills"),
		location:   formKeys("location"),
	},
}

func firstString(payload map[string]any, accessors []accessor) string {
	for _, get := range accessors {
		if s := valueAsString(get(payload)); s != "" {
			return s
		}
	}
	return ""
}

func firstList(payload map[string]any, accessors []accessor) []string {
	for _, get := range accessors {
		if items := valueAsList(get(payload)); len(items) > 0 {
			return items
		}
	}
	return []string{}
}
