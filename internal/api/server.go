package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spigell/applicant-screener/internal/applicant"
	"github.com/spigell/applicant-screener/internal/pipeline"
	"github.com/spigell/applicant-screener/internal/scoring"
	"github.com/spigell/applicant-screener/internal/storage"
	"go.uber.org/zap"
)

// Processor runs submissions through the screening pipeline.
type Processor interface {
	Process(ctx context.Context, source string, payload map[string]any) (pipeline.Outcome, error)
	Threshold() int
}

// Scorer evaluates ad-hoc resumes.
type Scorer interface {
	Score(ctx context.Context, a applicant.Applicant) scoring.Result
}

// Lister reads stored applicants in ranking order.
type Lister interface {
	List(ctx context.Context, limit int) ([]storage.Record, error)
}

// Config controls the HTTP surface.
type Config struct {
	// GoogleFormSecret, when set, must match the X-Webhook-Secret header.
	GoogleFormSecret string
	ModelEnabled     bool
}

// Deps aggregates the collaborators behind the HTTP handlers.
type Deps struct {
	Processor Processor
	Scorer    Scorer
	Records   Lister
}

type Server struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
	now    func() time.Time
}

func New(cfg Config, deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, deps: deps, logger: logger, now: time.Now}
}

// Router wires every route onto a fresh gin engine.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger))

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/new-applicant", s.webhook(string(applicant.SourceGeneric), false))
		webhooks.POST("/brevo", s.webhook(string(applicant.SourceBrevo), true))
		webhooks.POST("/apollo", s.webhook(string(applicant.SourceApollo), true))
		webhooks.POST("/google-form", sharedSecret(s.cfg.GoogleFormSecret), s.webhook(string(applicant.SourceGoogleForms), true))
		webhooks.GET("/test", s.webhookTest)
		webhooks.POST("/test", s.webhookTest)
	}

	api := router.Group("/api")
	{
		api.POST("/analyze", s.analyze)
		api.GET("/stats", s.stats)
		api.GET("/candidates", s.candidates)
	}

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"model_enabled": s.cfg.ModelEnabled,
		"threshold":     s.deps.Processor.Threshold(),
		"timestamp":     s.now().UTC().Format(time.RFC3339),
	})
}
