package scoring

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/spigell/applicant-screener/internal/ai"
	"github.com/spigell/applicant-screener/internal/applicant"
	"github.com/spigell/applicant-screener/internal/logger"
	"github.com/spigell/applicant-screener/internal/utils"
	"go.uber.org/zap"
)

// Path names the branch that produced a Result.
type Path string

const (
	PathModel    Path = "model"
	PathFallback Path = "fallback"
	PathDefault  Path = "default"
	PathDisabled Path = "disabled"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultMaxOutputTokens = 1000
	defaultMaxLogLength    = 200
)

// Config controls how the Scorer talks to the model.
type Config struct {
	ModelEnabled    bool
	Provider        string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
	MaxLogLength    int
}

// Evaluation is a Result together with the path that produced it.
type Evaluation struct {
	Result Result
	Path   Path
}

// Scorer combines the model, the parser and the heuristic fallback.
type Scorer struct {
	cfg      Config
	model    ai.Completer
	fallback *Fallback
	logger   *zap.Logger
}

func NewScorer(cfg Config, model ai.Completer, log *zap.Logger) *Scorer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		cfg:      cfg,
		model:    model,
		fallback: NewFallback(),
		logger:   logger.WithFields(log, logger.ModelFields(cfg.Provider, cfg.Model)...),
	}
}

// ModelEnabled reports whether scoring goes through a model.
func (s *Scorer) ModelEnabled() bool {
	return s.cfg.ModelEnabled && s.model != nil
}

// Model is the model name used for scoring, empty when the model path is off.
func (s *Scorer) Model() string {
	if !s.ModelEnabled() {
		return ""
	}
	return s.cfg.Model
}

// Score always returns a Result.
func (s *Scorer) Score(ctx context.Context, a applicant.Applicant) Result {
	return s.Evaluate(ctx, a).Result
}

// Evaluate scores an applicant. Model transport failures fall back to the
// heuristic scorer, unreadable model output yields DefaultResult.
func (s *Scorer) Evaluate(ctx context.Context, a applicant.Applicant) Evaluation {
	if !s.ModelEnabled() {
		return Evaluation{Result: s.fallback.Score(a), Path: PathDisabled}
	}

	result, err := s.scoreWithModel(ctx, a)

	var callErr *ai.ModelCallError
	var parseErr *ParseFailure
	switch {
	case err == nil:
		result.Score = ClampScore(result.Score)
		return Evaluation{Result: result, Path: PathModel}
	case errors.As(err, &parseErr):
		s.logger.Warn("model output unreadable, using default result", zap.Error(err))
		return Evaluation{Result: DefaultResult(), Path: PathDefault}
	case errors.As(err, &callErr):
		s.logger.Warn("model call failed, using heuristic scoring", zap.Error(err))
		return Evaluation{Result: s.fallback.Score(a), Path: PathFallback}
	default:
		s.logger.Error("unexpected scoring error, using heuristic scoring", zap.Error(err))
		return Evaluation{Result: s.fallback.Score(a), Path: PathFallback}
	}
}

func (s *Scorer) scoreWithModel(ctx context.Context, a applicant.Applicant) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	prompt := BuildPrompt(a.ResumeText, a.JobTitle)

	s.logger.Debug("model request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.cfg.MaxLogLength)),
	)

	raw, err := s.model.Complete(ctx, ai.Request{
		SystemPrompt:    SystemPrompt,
		UserPrompt:      prompt,
		Temperature:     s.cfg.Temperature,
		MaxOutputTokens: s.cfg.MaxOutputTokens,
	})
	if err != nil {
		var callErr *ai.ModelCallError
		if !errors.As(err, &callErr) {
			err = &ai.ModelCallError{Provider: s.cfg.Provider, Err: err}
		}
		return Result{}, err
	}

	s.logger.Debug("model response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.cfg.MaxLogLength)),
	)

	return parse(raw)
}
