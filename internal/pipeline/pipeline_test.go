package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spigell/applicant-screener/internal/applicant"
	"github.com/spigell/applicant-screener/internal/logger"
	"github.com/spigell/applicant-screener/internal/notify"
	"github.com/spigell/applicant-screener/internal/routing"
	"github.com/spigell/applicant-screener/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memoryStore struct {
	mu      sync.Mutex
	saved   []applicant.Applicant
	scores  map[string]scoring.Result
	saveErr error
}

func (m *memoryStore) Save(_ context.Context, a applicant.Applicant) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = append(m.saved, a)
	return "id-" + a.Email, nil
}

func (m *memoryStore) UpdateScore(_ context.Context, id string, result scoring.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scores == nil {
		m.scores = make(map[string]scoring.Result)
	}
	m.scores[id] = result
	return nil
}

type fixedScorer struct {
	score int
	calls int
}

func (f *fixedScorer) Evaluate(context.Context, applicant.Applicant) scoring.Evaluation {
	f.calls++
	return scoring.Evaluation{Result: scoring.Result{Score: f.score, Summary: "fixed"}, Path: scoring.PathModel}
}

type recordingNotifier struct {
	events []notify.HighScore
	err    error
}

func (r *recordingNotifier) NotifyHighScore(_ context.Context, event notify.HighScore) error {
	r.events = append(r.events, event)
	return r.err
}

type memoryGuard struct {
	seen map[string]bool
	err  error
}

func (g *memoryGuard) Seen(_ context.Context, a applicant.Applicant) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	key := a.Source + ":" + a.Email
	dup := g.seen[key]
	g.seen[key] = true
	return dup, nil
}

func payload() map[string]any {
	return map[string]any{"name": "Jane Doe", "email": "jane@x.io", "skills": []any{"Go"}}
}

func newProcessor(t *testing.T, deps Deps) *Processor {
	t.Helper()
	deps.Logger = zap.NewNop()
	p, err := New(deps, 80)
	require.NoError(t, err)
	return p
}

func TestProcessFastTrack(t *testing.T) {
	store := &memoryStore{}
	notifier := &recordingNotifier{}
	p := newProcessor(t, Deps{Store: store, Scorer: &fixedScorer{score: 80}, Notifier: notifier})

	out, err := p.Process(context.Background(), "brevo", payload())
	require.NoError(t, err)

	assert.Equal(t, StatusProcessed, out.Status)
	assert.Equal(t, "id-jane@x.io", out.ApplicantID)
	assert.Equal(t, routing.FastTrack, out.Verdict.Decision)
	assert.Equal(t, scoring.PathModel, out.Path)
	assert.Equal(t, 80, store.scores["id-jane@x.io"].Score)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "id-jane@x.io", notifier.events[0].ApplicantID)
	assert.Equal(t, "brevo", notifier.events[0].Applicant.Source)
}

func TestProcessManualReviewDoesNotNotify(t *testing.T) {
	notifier := &recordingNotifier{}
	p := newProcessor(t, Deps{Store: &memoryStore{}, Scorer: &fixedScorer{score: 79}, Notifier: notifier})

	out, err := p.Process(context.Background(), "", payload())
	require.NoError(t, err)

	assert.Equal(t, routing.ManualReview, out.Verdict.Decision)
	assert.False(t, out.Verdict.ThresholdMet())
	assert.Empty(t, notifier.events)
}

func TestProcessInvalidPayload(t *testing.T) {
	store := &memoryStore{}
	scorer := &fixedScorer{score: 90}
	p := newProcessor(t, Deps{Store: store, Scorer: scorer})

	out, err := p.Process(context.Background(), "generic", map[string]any{"phone": "123"})

	assert.True(t, errors.Is(err, applicant.ErrInvalidPayload))
	assert.Equal(t, StatusRejected, out.Status)
	assert.Equal(t, routing.Rejected, out.Verdict.Decision)
	assert.Empty(t, store.saved)
	assert.Zero(t, scorer.calls)
}

func TestProcessInvalidPayloadLogsRawPayload(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p, err := New(Deps{Store: &memoryStore{}, Scorer: &fixedScorer{}, Logger: zap.New(core)}, 80)
	require.NoError(t, err)

	submitted := map[string]any{"form_data": map[string]any{"Phone Number": "+44 20 7946 0000"}}
	_, err = p.Process(context.Background(), "google_forms", submitted)

	var invalid *applicant.InvalidPayloadError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, submitted, invalid.RawPayload)

	entries := logs.FilterMessage("submission rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, submitted, entries[0].ContextMap()[logger.FieldRawPayload])
}

func TestProcessDuplicate(t *testing.T) {
	store := &memoryStore{}
	scorer := &fixedScorer{score: 90}
	p := newProcessor(t, Deps{Store: store, Scorer: scorer, Guard: &memoryGuard{}})

	_, err := p.Process(context.Background(), "generic", payload())
	require.NoError(t, err)

	out, err := p.Process(context.Background(), "generic", payload())
	require.NoError(t, err)

	assert.Equal(t, StatusDuplicate, out.Status)
	assert.Len(t, store.saved, 1)
	assert.Equal(t, 1, scorer.calls)
}

func TestProcessGuardFailureIsIgnored(t *testing.T) {
	p := newProcessor(t, Deps{Store: &memoryStore{}, Scorer: &fixedScorer{score: 50}, Guard: &memoryGuard{err: errors.New("redis down")}})

	out, err := p.Process(context.Background(), "generic", payload())
	require.NoError(t, err)
	assert.Equal(t, StatusProcessed, out.Status)
}

func TestProcessNotifierFailureIsIgnored(t *testing.T) {
	p := newProcessor(t, Deps{Store: &memoryStore{}, Scorer: &fixedScorer{score: 95}, Notifier: &recordingNotifier{err: errors.New("ses down")}})

	out, err := p.Process(context.Background(), "generic", payload())
	require.NoError(t, err)
	assert.Equal(t, StatusProcessed, out.Status)
}

func TestProcessStoreFailure(t *testing.T) {
	p := newProcessor(t, Deps{Store: &memoryStore{saveErr: errors.New("disk full")}, Scorer: &fixedScorer{score: 95}})

	_, err := p.Process(context.Background(), "generic", payload())
	assert.ErrorContains(t, err, "disk full")
}

func TestNewValidatesDeps(t *testing.T) {
	_, err := New(Deps{Scorer: &fixedScorer{}}, 80)
	assert.Error(t, err)

	_, err = New(Deps{Store: &memoryStore{}}, 80)
	assert.Error(t, err)

	p, err := New(Deps{Store: &memoryStore{}, Scorer: &fixedScorer{}}, 0)
	require.NoError(t, err)
	assert.Equal(t, routing.DefaultThreshold, p.Threshold())
}
