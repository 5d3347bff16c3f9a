package routing

import "github.com/spigell/applicant-screener/internal/scoring"

// Decision is the next action for an applicant.
type Decision string

const (
	FastTrack    Decision = "fast_track"
	ManualReview Decision = "manual_review"
	Rejected     Decision = "rejected"
)

// DefaultThreshold is the minimum score that fast-tracks an applicant.
const DefaultThreshold = 80

// Verdict records a routing decision and the inputs that produced it.
type Verdict struct {
	Decision  Decision `json:"decision"`
	Score     int      `json:"score"`
	Threshold int      `json:"threshold"`
}

// Route decides between fast track and manual review. A score equal to the
// threshold is fast-tracked.
func Route(result scoring.Result, threshold int) Verdict {
	decision := ManualReview
	if result.Score >= threshold {
		decision = FastTrack
	}
	return Verdict{Decision: decision, Score: result.Score, Threshold: threshold}
}

// Reject is the verdict for submissions that never reached scoring.
func Reject(threshold int) Verdict {
	return Verdict{Decision: Rejected, Threshold: threshold}
}

// ThresholdMet reports whether the score reached the threshold.
func (v Verdict) ThresholdMet() bool {
	return v.Decision == FastTrack
}
