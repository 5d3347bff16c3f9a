package ai

import (
	"context"
	"testing"
)

type plainCompleter struct{}

func (plainCompleter) Complete(context.Context, Request) (string, error) { return "", nil }

type namedCompleter struct {
	plainCompleter
	model string
}

func (n namedCompleter) Model() string { return n.model }

func TestModelName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		completer  Completer
		configured string
		want       string
	}{
		{name: "resolved default", completer: namedCompleter{model: "gemini-2.5-flash"}, want: "gemini-2.5-flash"},
		{name: "resolved wins", completer: namedCompleter{model: "gpt-4o"}, configured: "gpt-4o", want: "gpt-4o"},
		{name: "empty report", completer: namedCompleter{}, configured: "custom", want: "custom"},
		{name: "no report", completer: plainCompleter{}, configured: "custom", want: "custom"},
		{name: "nil completer", completer: nil, configured: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ModelName(tt.completer, tt.configured); got != tt.want {
				t.Fatalf("ModelName() = %q, want %q", got, tt.want)
			}
		})
	}
}
