package dedupe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spigell/applicant-screener/internal/applicant"
)

const (
	keyPrefix  = "applicant:dedupe"
	DefaultTTL = 24 * time.Hour
)

// Config holds the Redis connection settings of the guard.
type Config struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"dedupe-ttl"`
}

// Redis remembers recent submissions by source and email.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(cfg Config) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisFromClient(client, cfg.TTL)
}

func NewRedisFromClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

// Seen marks the applicant as submitted and reports whether it already was.
func (r *Redis) Seen(ctx context.Context, a applicant.Applicant) (bool, error) {
	stored, err := r.client.SetNX(ctx, Key(a), a.ReceivedAt.Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return !stored, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Key is the Redis key guarding an applicant.
func Key(a applicant.Applicant) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, a.Source, strings.ToLower(strings.TrimSpace(a.Email)))
}
