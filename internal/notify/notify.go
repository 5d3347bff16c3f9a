package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/applicant-screener/internal/applicant"
	"github.com/spigell/applicant-screener/internal/logger"
	"github.com/spigell/applicant-screener/internal/scoring"
	"go.uber.org/zap"
)

// HighScore describes a fast-tracked applicant.
type HighScore struct {
	ApplicantID string
	Applicant   applicant.Applicant
	Result      scoring.Result
}

// Notifier announces fast-tracked applicants.
type Notifier interface {
	NotifyHighScore(ctx context.Context, event HighScore) error
}

// Subject is the one-line headline of a notification.
func Subject(event HighScore) string {
	return fmt.Sprintf("High-scoring applicant: %s (%d/100)", event.Applicant.Name, event.Result.Score)
}

// Body renders a plain-text notification.
func Body(event HighScore) string {
	a := event.Applicant
	r := event.Result

	var b strings.Builder
	fmt.Fprintf(&b, "Applicant: %s <%s>\n", a.Name, a.Email)
	if a.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", a.Phone)
	}
	if a.JobTitle != "" {
		fmt.Fprintf(&b, "Position: %s\n", a.JobTitle)
	}
	fmt.Fprintf(&b, "Source: %s\n", a.Source)
	fmt.Fprintf(&b, "Score: %d/100\n", r.Score)
	if event.ApplicantID != "" {
		fmt.Fprintf(&b, "Record: %s\n", event.ApplicantID)
	}
	fmt.Fprintf(&b, "\n%s\n", r.Summary)
	if len(r.Strengths) > 0 {
		fmt.Fprintf(&b, "\nStrengths: %s\n", strings.Join(r.Strengths, ", "))
	}
	if len(r.InterviewQuestions) > 0 {
		b.WriteString("\nSuggested questions:\n")
		for _, q := range r.InterviewQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	return b.String()
}

// Log writes notifications to the application log.
type Log struct {
	logger *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{logger: logger.WithFields(log)}
}

func (l *Log) NotifyHighScore(_ context.Context, event HighScore) error {
	l.logger.Info("high-scoring applicant",
		append(logger.ApplicantFields(event.ApplicantID, event.Applicant.Source),
			zap.Int("score", event.Result.Score),
			zap.String("job_title", event.Applicant.JobTitle),
		)...,
	)
	return nil
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) NotifyHighScore(ctx context.Context, event HighScore) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyHighScore(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
