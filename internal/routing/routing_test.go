package routing

import (
	"testing"

	"github.com/spigell/applicant-screener/internal/scoring"
)

func TestRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score     int
		threshold int
		want      Decision
	}{
		{score: 80, threshold: 80, want: FastTrack},
		{score: 79, threshold: 80, want: ManualReview},
		{score: 100, threshold: 80, want: FastTrack},
		{score: 0, threshold: 80, want: ManualReview},
		{score: 50, threshold: 50, want: FastTrack},
	}

	for _, tt := range tests {
		got := Route(scoring.Result{Score: tt.score}, tt.threshold)
		if got.Decision != tt.want {
			t.Fatalf("Route(%d, %d) = %s, want %s", tt.score, tt.threshold, got.Decision, tt.want)
		}
		if got.Score != tt.score || got.Threshold != tt.threshold {
			t.Fatalf("verdict does not carry its inputs: %+v", got)
		}
		if got.ThresholdMet() != (tt.want == FastTrack) {
			t.Fatalf("ThresholdMet mismatch for %+v", got)
		}
	}
}

func TestReject(t *testing.T) {
	t.Parallel()

	got := Reject(DefaultThreshold)
	if got.Decision != Rejected || got.ThresholdMet() {
		t.Fatalf("unexpected verdict: %+v", got)
	}
}
