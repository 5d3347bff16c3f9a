package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spigell/applicant-screener/internal/applicant"
	"github.com/spigell/applicant-screener/internal/report"
	"github.com/spigell/applicant-screener/internal/scoring"
	"go.uber.org/zap"
)

const (
	defaultCandidatesLimit = 50
	maxCandidatesLimit     = 500

	analyzeName        = "Resume Analysis"
	analyzeDefaultRole = "General Position"
)

type analyzeRequest struct {
	ResumeText string `json:"resume_text" binding:"required"`
	JobTitle   string `json:"job_title"`
}

// analyze scores a resume without storing it.
func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume_text is required"})
		return
	}

	jobTitle := strings.TrimSpace(req.JobTitle)
	if jobTitle == "" {
		jobTitle = analyzeDefaultRole
	}

	result := s.deps.Scorer.Score(c.Request.Context(), applicant.Applicant{
		Name:       analyzeName,
		ResumeText: req.ResumeText,
		JobTitle:   jobTitle,
		Skills:     []string{},
		ReceivedAt: s.now().UTC(),
	})

	c.JSON(http.StatusOK, result)
}

func (s *Server) stats(c *gin.Context) {
	records, err := s.deps.Records.List(c.Request.Context(), 0)
	if err != nil {
		s.logger.Error("listing applicants", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, report.Compute(records, s.deps.Processor.Threshold(), s.now()))
}

type candidateView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Source     string          `json:"source"`
	JobTitle   string          `json:"job_title"`
	Score      *int            `json:"score"`
	Decision   string          `json:"decision"`
	ReceivedAt time.Time       `json:"received_at"`
	Result     *scoring.Result `json:"result,omitempty"`
}

func (s *Server) candidates(c *gin.Context) {
	limit := defaultCandidatesLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxCandidatesLimit)
	}

	records, err := s.deps.Records.List(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("listing applicants", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	threshold := s.deps.Processor.Threshold()
	views := make([]candidateView, 0, len(records))
	for _, r := range records {
		view := candidateView{
			ID:         r.ID,
			Name:       r.Applicant.Name,
			Email:      r.Applicant.Email,
			Source:     r.Applicant.Source,
			JobTitle:   r.Applicant.JobTitle,
			Decision:   "pending",
			ReceivedAt: r.Applicant.ReceivedAt,
			Result:     r.Result,
		}
		if r.Scored() {
			score := r.Result.Score
			view.Score = &score
			view.Decision = string(report.Verdict(r, threshold).Decision)
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"candidates": views, "count": len(views)})
}
