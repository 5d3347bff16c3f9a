package storage

import (
	"errors"
	"sort"
	"time"

	"github.com/spigell/applicant-screener/internal/applicant"
	"github.com/spigell/applicant-screener/internal/scoring"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("applicant not found")

// Record is a stored applicant with its latest evaluation.
type Record struct {
	ID        string              `json:"id"`
	Applicant applicant.Applicant `json:"applicant"`
	Result    *scoring.Result     `json:"result,omitempty"`
	ScoredAt  *time.Time          `json:"scored_at,omitempty"`
}

// Scored reports whether the record has been evaluated.
func (r Record) Scored() bool {
	return r.Result != nil
}

// Score returns the stored score, or -1 for records not yet evaluated.
func (r Record) Score() int {
	if r.Result == nil {
		return -1
	}
	return r.Result.Score
}

// sortRecords orders by score descending, then newest first.
func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score() != records[j].Score() {
			return records[i].Score() > records[j].Score()
		}
		return records[i].Applicant.ReceivedAt.After(records[j].Applicant.ReceivedAt)
	})
}

func limitRecords(records []Record, limit int) []Record {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}
