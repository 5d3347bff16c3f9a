package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailConfig configures the SES notifier.
type EmailConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Region  string   `mapstructure:"region"`
	From    string   `mapstructure:"from"`
	To      []string `mapstructure:"to"`
}

// Email sends notifications through Amazon SES.
type Email struct {
	client sesAPI
	from   string
	to     []string
}

func NewEmail(ctx context.Context, cfg EmailConfig) (*Email, error) {
	if cfg.From == "" || len(cfg.To) == 0 {
		return nil, errors.New("email notifications need from and to addresses")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Email{client: ses.NewFromConfig(awsCfg), from: cfg.From, to: cfg.To}, nil
}

func (e *Email) NotifyHighScore(ctx context.Context, event HighScore) error {
	_, err := e.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: e.to,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(Subject(event))},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(Body(event))},
			},
		},
		Source: aws.String(e.from),
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
