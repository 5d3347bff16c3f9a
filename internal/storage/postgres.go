package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/applicant-screener/internal/applicant"
	"github.com/spigell/applicant-screener/internal/scoring"

	_ "github.com/lib/pq"
)

// PostgresConfig holds connection pool settings.
type PostgresConfig struct {
	DSN            string `mapstructure:"dsn"`
	MaxConnections int    `mapstructure:"max-connections"`
	MaxIdle        int    `mapstructure:"max-idle"`
}

// Postgres stores applicants in the applicants table.
type Postgres struct {
	db *sql.DB
}

const schema = `CREATE TABLE IF NOT EXISTS applicants (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	resume_text TEXT NOT NULL DEFAULT '',
	resume_url TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	job_title TEXT NOT NULL DEFAULT '',
	experience TEXT NOT NULL DEFAULT '',
	skills JSONB NOT NULL DEFAULT '[]',
	location TEXT NOT NULL DEFAULT '',
	raw_payload JSONB,
	received_at TIMESTAMPTZ NOT NULL,
	score INTEGER,
	score_result JSONB,
	scored_at TIMESTAMPTZ
)`

const (
	insertApplicant = `INSERT INTO applicants (id, name, email, phone, resume_text, resume_url, source, job_title, experience, skills, location, raw_payload, received_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	updateScore = `UPDATE applicants SET score = $2, score_result = $3, scored_at = $4 WHERE id = $1`

	listApplicants = `SELECT id, name, email, phone, resume_text, resume_url, source, job_title, experience, skills, location, raw_payload, received_at, score_result, scored_at
FROM applicants ORDER BY score DESC NULLS LAST, received_at DESC LIMIT $1`
)

const defaultListLimit = 1000

// NewPostgres opens a connection pool. Call Migrate before first use.
func NewPostgres(cfg PostgresConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an existing pool.
func NewPostgresFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create applicants table: %w", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Save(ctx context.Context, a applicant.Applicant) (string, error) {
	skills, err := json.Marshal(a.Skills)
	if err != nil {
		return "", fmt.Errorf("encode skills: %w", err)
	}
	raw, err := json.Marshal(a.RawPayload)
	if err != nil {
		return "", fmt.Errorf("encode raw payload: %w", err)
	}

	id := uuid.NewString()
	_, err = p.db.ExecContext(ctx, insertApplicant,
		id, a.Name, a.Email, a.Phone, a.ResumeText, a.ResumeURL, a.Source,
		a.JobTitle, a.Experience, skills, a.Location, raw, a.ReceivedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert applicant: %w", err)
	}

	return id, nil
}

func (p *Postgres) UpdateScore(ctx context.Context, id string, result scoring.Result) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode score result: %w", err)
	}

	res, err := p.db.ExecContext(ctx, updateScore, id, result.Score, encoded, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := p.db.QueryContext(ctx, listApplicants, limit)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var (
			r                        Record
			skills, raw, scoreResult []byte
			scoredAt                 sql.NullTime
		)

		a := &r.Applicant
		if err := rows.Scan(&r.ID, &a.Name, &a.Email, &a.Phone, &a.ResumeText, &a.ResumeURL, &a.Source,
			&a.JobTitle, &a.Experience, &skills, &a.Location, &raw, &a.ReceivedAt, &scoreResult, &scoredAt); err != nil {
			return nil, fmt.Errorf("scan applicant: %w", err)
		}

		if err := json.Unmarshal(skills, &a.Skills); err != nil {
			return nil, fmt.Errorf("decode skills of %s: %w", r.ID, err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &a.RawPayload); err != nil {
				return nil, fmt.Errorf("decode raw payload of %s: %w", r.ID, err)
			}
		}
		if len(scoreResult) > 0 {
			var result scoring.Result
			if err := json.Unmarshal(scoreResult, &result); err != nil {
				return nil, fmt.Errorf("decode score result of %s: %w", r.ID, err)
			}
			r.Result = &result
		}
		if scoredAt.Valid {
			t := scoredAt.Time
			r.ScoredAt = &t
		}

		records = append(records, r)
	}

	return records, rows.Err()
}

func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
