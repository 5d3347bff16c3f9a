package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spigell/applicant-screener/internal/applicant"
	"github.com/spigell/applicant-screener/internal/pipeline"
	"go.uber.org/zap"
)

const (
	sourceHeader = "X-Source"

	missingFieldsMessage = "Missing required fields: name and email"
	maxBodyBytes         = 1 << 20
)

func readObject(c *gin.Context) (map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("payload is null")
	}
	return payload, nil
}

// webhook accepts a submission. Routes dedicated to one provider force their
// source, the generic route honours the payload and the X-Source header.
func (s *Server) webhook(defaultSource string, forceSource bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := readObject(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": string(pipeline.StatusRejected), "error": "request body must be a JSON object"})
			return
		}

		source := defaultSource
		if !forceSource {
			if label := applicant.SourceOf(payload); label != "" {
				source = label
			} else if label := strings.TrimSpace(c.GetHeader(sourceHeader)); label != "" {
				source = label
			}
		}

		outcome, err := s.deps.Processor.Process(c.Request.Context(), source, payload)
		switch {
		case errors.Is(err, applicant.ErrInvalidPayload):
			c.JSON(http.StatusBadRequest, gin.H{"status": string(pipeline.StatusRejected), "error": missingFieldsMessage})
			return
		case err != nil:
			s.logger.Error("processing submission", zap.String("source", source), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "internal error"})
			return
		}

		if outcome.Status == pipeline.StatusDuplicate {
			c.JSON(http.StatusOK, gin.H{"status": string(pipeline.StatusDuplicate)})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":        string(outcome.Status),
			"applicant_id":  outcome.ApplicantID,
			"ai_score":      outcome.Result.Score,
			"threshold_met": outcome.Verdict.ThresholdMet(),
			"next_action":   string(outcome.Verdict.Decision),
		})
	}
}

func (s *Server) webhookTest(c *gin.Context) {
	response := gin.H{"status": "ok", "message": "webhook endpoint is reachable"}

	if c.Request.Method == http.MethodPost {
		payload, err := readObject(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": string(pipeline.StatusRejected), "error": "request body must be a JSON object"})
			return
		}
		response["received"] = payload
	}

	c.JSON(http.StatusOK, response)
}
