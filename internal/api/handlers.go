// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"insurance-agent/internal/agent/intent"
	"insurance-agent/internal/common/database"
	apperrors "insurance-agent/internal/common/errors"
	"insurance-agent/internal/common/validation"
	"insurance-agent/internal/compliance"
	"insurance-agent/internal/models"
)

type queryResponse struct {
	models.AgentResponse
	RequestID string `json:"requestId"`
}

type complianceRequest struct {
	Text string `json:"text"`
}

type complianceResponse struct {
	ComplianceCheck compliance.Result `json:"complianceCheck"`
	Timestamp       string            `json:"timestamp"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r.Context())

	body, err := s.readBody(w, r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), RequestID: reqID})
		return
	}
	if res := validation.AgentQuerySchema.Validate(body); !res.Valid {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:     string(apperrors.ErrCodeInvalidInput),
			Details:   res.GetErrorMessages(),
			RequestID: reqID,
		})
		return
	}

	var q models.AgentQuery
	if err := json.Unmarshal(body, &q); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), RequestID: reqID})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	resp := s.agent.ProcessAgentQuery(ctx, q.Text, q.Context)
	if s.recorder != nil {
		s.recorder.RecordQuery(r.Context(), string(intent.Classify(q.Text).Type), "http")
	}
	s.writeJSON(w, http.StatusOK, queryResponse{AgentResponse: resp, RequestID: reqID})
}

func (s *Server) handleComplianceCheck(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if res := validation.ComplianceCheckSchema.Validate(body); !res.Valid {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   string(apperrors.ErrCodeInvalidInput),
			Details: res.GetErrorMessages(),
		})
		return
	}

	var req complianceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, complianceResponse{
		ComplianceCheck: s.checker.Check(req.Text),
		Timestamp:       s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.cfg.Version,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	failures := database.CheckAll(ctx, s.backends)
	if len(failures) > 0 {
		s.logger.Warn("readiness check failed", map[string]interface{}{
			"backends": database.FailureNames(failures),
		})
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"failed": database.FailureNames(failures),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
