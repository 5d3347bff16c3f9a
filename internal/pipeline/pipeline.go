package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/applicant-screener/internal/applicant"
	"github.com/spigell/applicant-screener/internal/logger"
	"github.com/spigell/applicant-screener/internal/metrics"
	"github.com/spigell/applicant-screener/internal/notify"
	"github.com/spigell/applicant-screener/internal/routing"
	"github.com/spigell/applicant-screener/internal/scoring"
	"go.uber.org/zap"
)

// Status is the outcome of one submission.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusRejected  Status = "rejected"
	StatusDuplicate Status = "duplicate"
)

// Store persists applicants and their scores.
type Store interface {
	Save(ctx context.Context, a applicant.Applicant) (string, error)
	UpdateScore(ctx context.Context, id string, result scoring.Result) error
}

// Guard detects repeated submissions.
type Guard interface {
	Seen(ctx context.Context, a applicant.Applicant) (bool, error)
}

// Evaluator scores an applicant.
type Evaluator interface {
	Evaluate(ctx context.Context, a applicant.Applicant) scoring.Evaluation
}

// Deps aggregates the collaborators of a Processor. Guard and Notifier are optional.
type Deps struct {
	Store    Store
	Scorer   Evaluator
	Notifier notify.Notifier
	Guard    Guard
	Logger   *zap.Logger
}

// Outcome describes what happened to a submission.
type Outcome struct {
	Status      Status
	ApplicantID string
	Applicant   applicant.Applicant
	Result      scoring.Result
	Path        scoring.Path
	Verdict     routing.Verdict
}

// Processor runs a submission through normalize, store, score, route and notify.
type Processor struct {
	deps      Deps
	threshold int
}

func New(deps Deps, threshold int) (*Processor, error) {
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	if deps.Scorer == nil {
		return nil, errors.New("scorer is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = routing.DefaultThreshold
	}

	return &Processor{deps: deps, threshold: threshold}, nil
}

func (p *Processor) Threshold() int {
	return p.threshold
}

// Process handles one raw submission. Invalid payloads are returned as an
// error wrapping applicant.ErrInvalidPayload together with a rejected Outcome.
// Notification failures are logged and never fail the submission.
func (p *Processor) Process(ctx context.Context, source string, payload map[string]any) (Outcome, error) {
	label := sourceLabel(source)

	a, err := applicant.Normalize(source, payload)
	if err != nil {
		metrics.Submissions.WithLabelValues(label, string(StatusRejected)).Inc()
		metrics.Routing.WithLabelValues(string(routing.Rejected)).Inc()
		p.deps.Logger.Warn("submission rejected",
			zap.String(logger.FieldSource, label),
			zap.Any(logger.FieldRawPayload, payload),
			zap.Error(err),
		)
		return Outcome{Status: StatusRejected, Verdict: routing.Reject(p.threshold)}, err
	}

	log := p.deps.Logger.With(zap.String(logger.FieldSource, a.Source))

	if p.deps.Guard != nil {
		dup, err := p.deps.Guard.Seen(ctx, a)
		switch {
		case err != nil:
			log.Warn("duplicate check failed, processing anyway", zap.Error(err))
		case dup:
			metrics.Submissions.WithLabelValues(label, string(StatusDuplicate)).Inc()
			log.Info("duplicate submission skipped")
			return Outcome{Status: StatusDuplicate, Applicant: a}, nil
		}
	}

	id, err := p.deps.Store.Save(ctx, a)
	if err != nil {
		return Outcome{}, fmt.Errorf("save applicant: %w", err)
	}
	log = log.With(zap.String(logger.FieldApplicantID, id))

	started := time.Now()
	evaluation := p.deps.Scorer.Evaluate(ctx, a)
	metrics.ObserveScoring(string(evaluation.Path), started)

	if err := p.deps.Store.UpdateScore(ctx, id, evaluation.Result); err != nil {
		return Outcome{}, fmt.Errorf("store score: %w", err)
	}

	verdict := routing.Route(evaluation.Result, p.threshold)
	metrics.Routing.WithLabelValues(string(verdict.Decision)).Inc()
	metrics.Submissions.WithLabelValues(label, string(StatusProcessed)).Inc()

	log.Info("applicant scored",
		zap.Int("score", evaluation.Result.Score),
		zap.String(logger.FieldScoringPath, string(evaluation.Path)),
		zap.String("decision", string(verdict.Decision)),
	)

	if verdict.ThresholdMet() && p.deps.Notifier != nil {
		err := p.deps.Notifier.NotifyHighScore(ctx, notify.HighScore{
			ApplicantID: id,
			Applicant:   a,
			Result:      evaluation.Result,
		})
		if err != nil {
			log.Error("high score notification failed", zap.Error(err))
		}
	}

	return Outcome{
		Status:      StatusProcessed,
		ApplicantID: id,
		Applicant:   a,
		Result:      evaluation.Result,
		Path:        evaluation.Path,
		Verdict:     verdict,
	}, nil
}

// sourceLabel keeps metric label values to the known sources.
func sourceLabel(source string) string {
	s, known := applicant.ParseSource(source)
	if !known {
		return "unknown"
	}
	return string(s)
}
