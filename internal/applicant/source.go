package applicant

import "strings"

// Source identifies an intake channel with its own field naming.
type Source string

const (
	SourceGeneric     Source = "generic"
	SourceBrevo       Source = "brevo"
	SourceApollo      Source = "apollo"
	SourceGoogleForms Source = "google_forms"
	SourceLinkedIn    Source = "linkedin"
	SourceFacebook    Source = "facebook"
)

var sourceAliases = map[string]Source{
	"":             SourceGeneric,
	"generic":      SourceGeneric,
	"website":      SourceGeneric,
	"brevo":        SourceBrevo,
	"brevo_crm":    SourceBrevo,
	"sendinblue":   SourceBrevo,
	"apollo":       SourceApollo,
	"apollo.io":    SourceApollo,
	"apollo_io":    SourceApollo,
	"google_forms": SourceGoogleForms,
	"google_form":  SourceGoogleForms,
	"googleforms":  SourceGoogleForms,
	"linkedin":     SourceLinkedIn,
	"facebook":     SourceFacebook,
}

// ParseSource resolves a free-form source label to a known Source.
// The second result is false when the label is unknown and the generic
// mapping applies.
func ParseSource(label string) (Source, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)

	source, ok := sourceAliases[key]
	if !ok {
		return SourceGeneric, false
	}
	return source, true
}

// Sources returns the known sources in a stable order.
func Sources() []Source {
	return []Source{SourceGeneric, SourceBrevo, SourceApollo, SourceGoogleForms, SourceLinkedIn, SourceFacebook}
}
