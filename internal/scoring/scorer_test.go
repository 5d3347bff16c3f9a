package scoring

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spigell/applicant-screener/internal/ai"
	"github.com/spigell/applicant-screener/internal/applicant"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubCompleter struct {
	response string
	err      error
	requests []ai.Request
	deadline bool
}

func (s *stubCompleter) Complete(ctx context.Context, req ai.Request) (string, error) {
	s.requests = append(s.requests, req)
	_, s.deadline = ctx.Deadline()
	return s.response, s.err
}

var jane = applicant.Applicant{
	Name:       "Jane Doe",
	Email:      "jane@x.io",
	ResumeText: "Backend engineer",
	JobTitle:   "Platform Engineer",
	Skills:     []string{"Go", "SQL", "Linux"},
	Experience: "5 years backend",
}

func newTestScorer(model ai.Completer, enabled bool) *Scorer {
	s := NewScorer(Config{
		ModelEnabled:    enabled,
		Provider:        ai.ProviderOpenAI,
		Model:           "test-model",
		Temperature:     0.3,
		MaxOutputTokens: 1000,
		Timeout:         time.Second,
	}, model, zap.NewNop())
	s.fallback = fixedFallback(0)
	return s
}

func TestScorerUsesModel(t *testing.T) {
	t.Parallel()

	model := &stubCompleter{response: `{"score": 92, "summary": "Excellent", "strengths": ["Go"]}`}
	s := newTestScorer(model, true)

	got := s.Evaluate(context.Background(), jane)
	if got.Path != PathModel {
		t.Fatalf("expected model path, got %s", got.Path)
	}
	if got.Result.Score != 92 || got.Result.Summary != "Excellent" {
		t.Fatalf("unexpected result: %+v", got.Result)
	}

	if len(model.requests) != 1 {
		t.Fatalf("expected one model call, got %d", len(model.requests))
	}
	req := model.requests[0]
	if req.SystemPrompt != SystemPrompt || req.Temperature != 0.3 || req.MaxOutputTokens != 1000 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if !strings.Contains(req.UserPrompt, "TARGET POSITION: Platform Engineer") {
		t.Fatalf("prompt does not mention job title:\n%s", req.UserPrompt)
	}
	if !model.deadline {
		t.Fatalf("expected model call to carry a deadline")
	}
}

func TestScorerClampsModelScore(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		`{"score": 140}`:    100,
		`{"score": -5}`:     0,
		`{"score": 1e19}`:   100,
		`{"score": 1e30}`:   100,
		`{"score": -1e30}`:  0,
		`{"score": "1e25"}`: 100,
	}

	for raw, want := range tests {
		s := newTestScorer(&stubCompleter{response: raw}, true)
		if got := s.Score(context.Background(), jane); got.Score != want {
			t.Fatalf("%s: expected %d, got %d", raw, want, got.Score)
		}
	}
}

func TestScorerModelDisabled(t *testing.T) {
	t.Parallel()

	model := &stubCompleter{response: `{"score": 99}`}
	s := newTestScorer(model, false)

	got := s.Evaluate(context.Background(), jane)
	if got.Path != PathDisabled {
		t.Fatalf("expected disabled path, got %s", got.Path)
	}
	if got.Result.Score != 76 {
		t.Fatalf("expected heuristic score 76, got %d", got.Result.Score)
	}
	if len(model.requests) != 0 {
		t.Fatalf("model must not be called when disabled")
	}

	if s.Model() != "" {
		t.Fatalf("disabled scorer must not report a model, got %q", s.Model())
	}

	if s := newTestScorer(nil, true); s.ModelEnabled() {
		t.Fatalf("scorer without a model must report disabled")
	}
	if enabled := newTestScorer(model, true); enabled.Model() != "test-model" {
		t.Fatalf("expected test-model, got %q", enabled.Model())
	}
}

func TestScorerModelFailureFallsBack(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)

	s := newTestScorer(&stubCompleter{err: errors.New("connection refused")}, true)
	s.logger = zap.New(core)

	got := s.Evaluate(context.Background(), jane)
	if got.Path != PathFallback {
		t.Fatalf("expected fallback path, got %s", got.Path)
	}
	if got.Result.Summary != "Heuristic analysis for Jane Doe. Score based on submitted profile." {
		t.Fatalf("expected heuristic result, got %+v", got.Result)
	}
	if observed.Len() != 1 {
		t.Fatalf("expected one warning, got %d", observed.Len())
	}
}

func TestScorerKeepsProviderCallError(t *testing.T) {
	t.Parallel()

	callErr := &ai.ModelCallError{Provider: ai.ProviderGemini, Err: context.DeadlineExceeded}
	s := newTestScorer(&stubCompleter{err: callErr}, true)

	_, err := s.scoreWithModel(context.Background(), jane)
	if err != callErr {
		t.Fatalf("expected provider error to pass through, got %v", err)
	}
}

func TestScorerUnreadableOutputUsesDefault(t *testing.T) {
	t.Parallel()

	s := newTestScorer(&stubCompleter{response: "I am unable to score this resume."}, true)

	got := s.Evaluate(context.Background(), jane)
	if got.Path != PathDefault {
		t.Fatalf("expected default path, got %s", got.Path)
	}
	if !reflect.DeepEqual(got.Result, DefaultResult()) {
		t.Fatalf("expected default result, got %+v", got.Result)
	}
}
