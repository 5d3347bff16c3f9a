package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSConfig configures the SNS notifier.
type SNSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic-arn"`
}

// SNS publishes notifications to a topic as JSON messages.
type SNS struct {
	client   snsAPI
	topicARN string
}

type snsMessage struct {
	ApplicantID string   `json:"applicant_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Source      string   `json:"source"`
	JobTitle    string   `json:"job_title"`
	Score       int      `json:"score"`
	Summary     string   `json:"summary"`
	Strengths   []string `json:"strengths"`
}

func NewSNS(ctx context.Context, cfg SNSConfig) (*SNS, error) {
	if cfg.TopicARN == "" {
		return nil, errors.New("sns notifications need a topic arn")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SNS{client: sns.NewFromConfig(awsCfg), topicARN: cfg.TopicARN}, nil
}

func (s *SNS) NotifyHighScore(ctx context.Context, event HighScore) error {
	message, err := json.Marshal(snsMessage{
		ApplicantID: event.ApplicantID,
		Name:        event.Applicant.Name,
		Email:       event.Applicant.Email,
		Source:      event.Applicant.Source,
		JobTitle:    event.Applicant.JobTitle,
		Score:       event.Result.Score,
		Summary:     event.Result.Summary,
		Strengths:   event.Result.Strengths,
	})
	if err != nil {
		return fmt.Errorf("encode sns message: %w", err)
	}

	// SNS caps subjects at 100 characters.
	subject := []rune(Subject(event))
	if len(subject) > 100 {
		subject = subject[:100]
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(string(subject)),
		Message:  aws.String(string(message)),
	})
	if err != nil {
		return fmt.Errorf("publish to sns: %w", err)
	}
	return nil
}
