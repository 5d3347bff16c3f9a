package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spigell/applicant-screener/internal/ai"
	"github.com/spigell/applicant-screener/internal/ai/gemini"
	"github.com/spigell/applicant-screener/internal/ai/openai"
	"github.com/spigell/applicant-screener/internal/dedupe"
	"github.com/spigell/applicant-screener/internal/logger"
	"github.com/spigell/applicant-screener/internal/notify"
	"github.com/spigell/applicant-screener/internal/pipeline"
	"github.com/spigell/applicant-screener/internal/scoring"
	"github.com/spigell/applicant-screener/internal/secrets"
	"github.com/spigell/applicant-screener/internal/storage"
	"go.uber.org/zap"
)

// recordStore is what the commands need from a storage backend.
type recordStore interface {
	pipeline.Store
	List(ctx context.Context, limit int) ([]storage.Record, error)
	Close() error
}

type components struct {
	scorer    *scoring.Scorer
	processor *pipeline.Processor
	store     recordStore
	closers   []io.Closer
}

func (c *components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i].Close())
	}
	return errors.Join(errs...)
}

func buildComponents(ctx context.Context, config *Config, log *zap.Logger) (*components, error) {
	c := &components{}

	store, err := newStore(ctx, config.Storage)
	if err != nil {
		return nil, err
	}
	c.store = store
	c.closers = append(c.closers, store)

	c.scorer, err = newScorer(ctx, config, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	notifier, err := newNotifier(ctx, config.Notifications, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	deps := pipeline.Deps{
		Store:    store,
		Scorer:   c.scorer,
		Notifier: notifier,
		Logger:   log,
	}

	if strings.TrimSpace(config.Redis.Address) != "" {
		guard := dedupe.NewRedis(config.Redis)
		c.closers = append(c.closers, guard)
		if err := guard.Ping(ctx); err != nil {
			log.Warn("redis is unreachable, duplicates will be processed", zap.Error(err))
		}
		deps.Guard = guard
	}

	c.processor, err = pipeline.New(deps, config.Scoring.Threshold)
	if err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

func newStore(ctx context.Context, cfg StorageConfig) (recordStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "file":
		if strings.TrimSpace(cfg.File) == "" {
			return nil, errors.New("storage.file is required for the file driver")
		}
		return storage.NewFile(cfg.File), nil
	case "postgres":
		pg, err := storage.NewPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func newScorer(ctx context.Context, config *Config, log *zap.Logger) (*scoring.Scorer, error) {
	cfg := scoring.Config{
		ModelEnabled:    config.AI.Enabled,
		Provider:        strings.ToLower(strings.TrimSpace(config.AI.Provider)),
		Model:           config.AI.Model,
		Temperature:     config.AI.Temperature,
		MaxOutputTokens: config.AI.MaxOutputTokens,
		Timeout:         config.Scoring.Timeout,
		MaxLogLength:    config.AI.MaxLogLength,
	}

	if !cfg.ModelEnabled {
		log.Info("ai scoring is disabled, using heuristic scores")
		return scoring.NewScorer(cfg, nil, log), nil
	}

	model, err := newCompleter(ctx, config.AI, log)
	if errors.Is(err, secrets.ErrNotConfigured) {
		log.Warn("ai api key is not configured, using heuristic scores", logger.ModelFields(cfg.Provider, cfg.Model)...)
		cfg.ModelEnabled = false
		return scoring.NewScorer(cfg, nil, log), nil
	}
	if err != nil {
		return nil, err
	}

	cfg.Model = ai.ModelName(model, cfg.Model)
	return scoring.NewScorer(cfg, model, log), nil
}

func newCompleter(ctx context.Context, cfg AIConfig, log *zap.Logger) (ai.Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case "", ai.ProviderOpenAI:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			File:  cfg.APIKeyFile,
			Env:   "OPENAI_API_KEY",
			Value: cfg.APIKey,
		})
		if err != nil {
			return nil, err
		}
		return openai.New(openai.Config{
			APIKey:     apiKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			MaxRetries: cfg.MaxRetries,
		}, log)
	case ai.ProviderGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  cfg.APIKeyFile,
			Env:   "GEMINI_API_KEY",
			Value: cfg.APIKey,
		})
		if err != nil {
			return nil, err
		}
		return gemini.NewGenerator(ctx, gemini.Config{
			APIKey:     apiKey,
			Model:      cfg.Model,
			MaxRetries: cfg.MaxRetries,
		}, log)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func newNotifier(ctx context.Context, cfg NotificationsConfig, log *zap.Logger) (notify.Notifier, error) {
	var notifiers notify.Multi

	if cfg.Log {
		notifiers = append(notifiers, notify.NewLog(log))
	}

	if cfg.Email.Enabled {
		email, err := notify.NewEmail(ctx, cfg.Email)
		if err != nil {
			return nil, fmt.Errorf("email notifier: %w", err)
		}
		notifiers = append(notifiers, email)
	}

	if cfg.SNS.Enabled {
		sns, err := notify.NewSNS(ctx, cfg.SNS)
		if err != nil {
			return nil, fmt.Errorf("sns notifier: %w", err)
		}
		notifiers = append(notifiers, sns)
	}

	if len(notifiers) == 0 {
		return nil, nil
	}
	return notifiers, nil
}

func googleFormSecret(cfg WebhooksConfig) (string, error) {
	return secrets.Optional(secrets.Source{
		Name:  "google form secret",
		File:  cfg.GoogleFormSecretFile,
		Value: cfg.GoogleFormSecret,
	})
}
