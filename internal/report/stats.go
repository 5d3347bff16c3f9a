package report

import (
	"math"
	"time"

	"github.com/spigell/applicant-screener/internal/routing"
	"github.com/spigell/applicant-screener/internal/scoring"
	"github.com/spigell/applicant-screener/internal/storage"
)

// TopMatchScore is the score from which an applicant counts as a top match.
const TopMatchScore = 90

// Stats summarizes stored applicants for the dashboard.
type Stats struct {
	Total        int                      `json:"total_candidates"`
	AverageScore int                      `json:"avg_score"`
	TopMatches   int                      `json:"top_matches"`
	NewToday     int                      `json:"new_today"`
	Pending      int                      `json:"pending"`
	ByDecision   map[routing.Decision]int `json:"by_decision"`
}

// Compute builds Stats from records. "Today" is the UTC calendar day of now.
func Compute(records []storage.Record, threshold int, now time.Time) Stats {
	stats := Stats{
		Total: len(records),
		ByDecision: map[routing.Decision]int{
			routing.FastTrack:    0,
			routing.ManualReview: 0,
		},
	}

	today := now.UTC().Truncate(24 * time.Hour)

	var sum, scored int
	for _, r := range records {
		if r.Applicant.ReceivedAt.UTC().Truncate(24 * time.Hour).Equal(today) {
			stats.NewToday++
		}

		if !r.Scored() {
			stats.Pending++
			continue
		}

		scored++
		sum += r.Result.Score
		if r.Result.Score >= TopMatchScore {
			stats.TopMatches++
		}
		stats.ByDecision[Verdict(r, threshold).Decision]++
	}

	if scored > 0 {
		stats.AverageScore = int(math.Round(float64(sum) / float64(scored)))
	}

	return stats
}

// Verdict routes a stored record. Unscored records count as manual review.
func Verdict(r storage.Record, threshold int) routing.Verdict {
	if !r.Scored() {
		return routing.Route(scoring.Result{}, threshold)
	}
	return routing.Route(*r.Result, threshold)
}
