package scoring

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/spigell/applicant-screener/internal/applicant"
)

const (
	fallbackBase           = 60
	fallbackSkillBonusCap  = 20
	fallbackYearsBonusCap  = 20
	fallbackUnparsedYears  = 5
	fallbackJitter         = 10
	fallbackMaxCountedYear = fallbackYearsBonusCap / 2
)

// Fallback produces a heuristic Result without a model.
type Fallback struct {
	// between returns a uniformly random integer in [lo, hi].
	between func(lo, hi int) int
}

func NewFallback() *Fallback {
	return &Fallback{between: randomBetween}
}

func randomBetween(lo, hi int) int {
	return lo + rand.IntN(hi-lo+1)
}

// Score evaluates an applicant from its skills and experience fields.
func (f *Fallback) Score(a applicant.Applicant) Result {
	score := fallbackBase + skillsBonus(a.Skills) + experienceBonus(a.Experience)
	score += f.between(-fallbackJitter, fallbackJitter)

	name := strings.TrimSpace(a.Name)
	if name == "" {
		name = "the applicant"
	}

	strengths := []string{"Technical aptitude", "Relevant background"}
	if len(a.Skills) > 0 {
		strengths = append([]string(nil), a.Skills[:min(3, len(a.Skills))]...)
	}

	return Result{
		Score:     ClampScore(score),
		Breakdown: Breakdown{
			SkillsMatch:     f.between(15, 25),
			ExperienceLevel: f.between(15, 25),
			Education:       f.between(10, 20),
			Achievements:    f.between(8, 15),
			Communication:   f.between(8, 15),
		},
		Summary:            fmt.Sprintf("Heuristic analysis for %s. Score based on submitted profile.", name),
		Strengths:          strengths,
		Weaknesses:         []string{"Limited details in resume", "Needs verification"},
		RecommendedRoles:   []string{"Developer", "Technician", "Specialist"},
		RedFlags:           []string{},
		GreenFlags:         []string{"Complete application", "Clear contact info"},
		InterviewQuestions: []string{
			"Tell me about your experience with the mentioned technologies",
			"What projects are you most proud of?",
			"Where do you see yourself in 5 years?",
		},
	}
}

func skillsBonus(skills []string) int {
	return min(len(skills)*2, fallbackSkillBonusCap)
}

// experienceBonus reads a year count from the leading token of text that
// mentions years. Unreadable counts earn a flat bonus.
func experienceBonus(experience string) int {
	if !strings.Contains(strings.ToLower(experience), "year") {
		return 0
	}

	fields := strings.Fields(experience)
	if len(fields) == 0 {
		return fallbackUnparsedYears
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, fields[0])

	years, err := strconv.Atoi(digits)
	if err != nil {
		return fallbackUnparsedYears
	}

	return min(years, fallbackMaxCountedYear) * 2
}
