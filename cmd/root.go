package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/applicant-screener/internal/dedupe"
	"github.com/spigell/applicant-screener/internal/notify"
	"github.com/spigell/applicant-screener/internal/routing"
	"github.com/spigell/applicant-screener/internal/storage"
)

const (
	app       = "applicant-screener"
	envPrefix = "SCREENER"
)

type Config struct {
	Listen        string              `mapstructure:"listen"`
	Scoring       ScoringConfig       `mapstructure:"scoring"`
	AI            AIConfig            `mapstructure:"ai"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Redis         dedupe.Config       `mapstructure:"redis"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Webhooks      WebhooksConfig      `mapstructure:"webhooks"`
}

type ScoringConfig struct {
	Threshold int           `mapstructure:"threshold"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type AIConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	Provider        string  `mapstructure:"provider"`
	Model           string  `mapstructure:"model"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max-output-tokens"`
	MaxRetries      int     `mapstructure:"max-retries"`
	MaxLogLength    int     `mapstructure:"max-log-length"`
	APIKey          string  `mapstructure:"api-key"`
	APIKeyFile      string  `mapstructure:"api-key-file"`
	BaseURL         string  `mapstructure:"base-url"`
}

type StorageConfig struct {
	Driver   string                 `mapstructure:"driver"`
	File     string                 `mapstructure:"file"`
	Postgres storage.PostgresConfig `mapstructure:"postgres"`
}

type NotificationsConfig struct {
	Log   bool               `mapstructure:"log"`
	Email notify.EmailConfig `mapstructure:"email"`
	SNS   notify.SNSConfig   `mapstructure:"sns"`
}

type WebhooksConfig struct {
	GoogleFormSecret     string `mapstructure:"google-form-secret"`
	GoogleFormSecretFile string `mapstructure:"google-form-secret-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "applicant-screener scores incoming job applicants and routes them to fast track or manual review",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is applicant-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A missing .env file is fine, the environment may be set another way.
	_ = godotenv.Load()

	if err := loadConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")

	v.SetDefault("scoring.threshold", routing.DefaultThreshold)
	v.SetDefault("scoring.timeout", 30*time.Second)

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.temperature", 0.3)
	v.SetDefault("ai.max-output-tokens", 1000)
	v.SetDefault("ai.max-retries", 3)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.api-key", "")
	v.SetDefault("ai.api-key-file", "")
	v.SetDefault("ai.base-url", "")

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.file", "applicants.json")
	v.SetDefault("storage.postgres.dsn", "")
	v.SetDefault("storage.postgres.max-connections", 10)
	v.SetDefault("storage.postgres.max-idle", 5)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dedupe-ttl", dedupe.DefaultTTL)

	v.SetDefault("notifications.log", true)
	v.SetDefault("notifications.email.enabled", false)
	v.SetDefault("notifications.email.region", "")
	v.SetDefault("notifications.email.from", "")
	v.SetDefault("notifications.email.to", []string{})
	v.SetDefault("notifications.sns.enabled", false)
	v.SetDefault("notifications.sns.region", "")
	v.SetDefault("notifications.sns.topic-arn", "")

	v.SetDefault("webhooks.google-form-secret", "")
	v.SetDefault("webhooks.google-form-secret-file", "")
}

// loadConfig applies defaults, the environment and an optional config file.
// An explicitly requested file must exist.
func loadConfig(v *viper.Viper, file string) error {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", file, err)
		}
		return nil
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
