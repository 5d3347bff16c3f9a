package scoring

// Breakdown holds the per-dimension sub-scores.
type Breakdown struct {
	SkillsMatch     int `json:"skills_match" mapstructure:"skills_match"`
	ExperienceLevel int `json:"experience_level" mapstructure:"experience_level"`
	Education       int `json:"education" mapstructure:"education"`
	Achievements    int `json:"achievements" mapstructure:"achievements"`
	Communication   int `json:"communication" mapstructure:"communication"`
}

// Result is a complete evaluation of one applicant.
type Result struct {
	Score              int       `json:"score" mapstructure:"score"`
	Breakdown          Breakdown `json:"breakdown" mapstructure:"breakdown"`
	Summary            string    `json:"summary" mapstructure:"summary"`
	Strengths          []string  `json:"strengths" mapstructure:"strengths"`
	Weaknesses         []string  `json:"weaknesses" mapstructure:"weaknesses"`
	RecommendedRoles   []string  `json:"recommended_roles" mapstructure:"recommended_roles"`
	RedFlags           []string  `json:"red_flags" mapstructure:"red_flags"`
	GreenFlags         []string  `json:"green_flags" mapstructure:"green_flags"`
	InterviewQuestions []string  `json:"interview_questions" mapstructure:"interview_questions"`
}

const (
	MinScore = 0
	MaxScore = 100

	defaultScore   = 75
	defaultSummary = "AI analysis completed"
)

// DefaultResult is returned when a model answered but its output could not be
// interpreted. Each call returns fresh slices.
func DefaultResult() Result {
	return Result{
		Score: defaultScore,
		Breakdown: Breakdown{
			SkillsMatch:     18,
			ExperienceLevel: 20,
			Education:       15,
			Achievements:    12,
			Communication:   10,
		},
		Summary:            "AI analysis completed with standard evaluation",
		Strengths:          []string{"Technical background", "Relevant experience"},
		Weaknesses:         []string{"Limited details", "Needs further assessment"},
		RecommendedRoles:   []string{"Technical Role", "Specialist Position"},
		RedFlags:           []string{},
		GreenFlags:         []string{"Complete application"},
		InterviewQuestions: []string{"Discuss your technical experience", "What are your career goals?"},
	}
}

// ClampScore forces a score into [MinScore, MaxScore].
func ClampScore(score int) int {
	return max(MinScore, min(score, MaxScore))
}
