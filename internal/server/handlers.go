package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/ats-analyzer/internal/pipeline"
	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// AnalyzeRequest represents the request body for /analyze
type AnalyzeRequest struct {
	ID             string `json:"id,omitempty" validate:"omitempty,max=128"`
	Text           string `json:"text" validate:"required"`
	JobDescription string `json:"job_description,omitempty"`
}

// BatchRequest represents the request body for /analyze/batch
type BatchRequest struct {
	Items []AnalyzeRequest `json:"items" validate:"required,min=1,dive"`
}

// BatchResponse represents the response for /analyze/batch
type BatchResponse struct {
	Items  []pipeline.BatchItem `json:"items"`
	Failed int                  `json:"failed"`
}

// RulesResponse describes the active rule set
type RulesResponse struct {
	Source   string            `json:"source"`
	Versions map[string]string `json:"versions"`
	LoadedAt time.Time         `json:"loaded_at"`
}

// decode reads a JSON body into v and validates it. On failure it has
// already written the error response.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, types.CodeInvalidInput, "Request body too large")
			return false
		}
		s.errorResponse(w, http.StatusBadRequest, types.CodeInvalidInput, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.errorResponse(w, http.StatusBadRequest, types.CodeInvalidInput, extractValidationErrors(err))
		return false
	}
	return true
}

// handleAnalyze scores one résumé
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !s.decode(w, r, &req) {
		return
	}

	id := req.ID
	if id == "" {
		id = requestID(r.Context())
	}
	report, err := s.analyzer.Analyze(r.Context(), pipeline.Request{ID: id, Text: req.Text, JobDescription: req.JobDescription})
	if err != nil {
		s.analysisError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleAnalyzeBatch scores several résumés; item failures are reported per item
func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Items) > s.maxBatchItems {
		s.errorResponse(w, http.StatusBadRequest, types.CodeInvalidInput,
			fmt.Sprintf("batch has %d items, the limit is %d", len(req.Items), s.maxBatchItems))
		return
	}

	reqID := requestID(r.Context())
	reqs := make([]pipeline.Request, len(req.Items))
	for i, item := range req.Items {
		id := item.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", reqID, i)
		}
		reqs[i] = pipeline.Request{ID: id, Text: item.Text, JobDescription: item.JobDescription}
	}

	items, err := s.analyzer.AnalyzeBatch(r.Context(), reqs)
	if err != nil {
		s.analysisError(w, err)
		return
	}

	resp := BatchResponse{Items: items}
	for _, item := range items {
		if item.Error != nil {
			resp.Failed++
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleRules reports the active rule set, loading it if needed
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	set, err := s.rules.Get(r.Context())
	if err != nil {
		s.analysisError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rulesResponse(set))
}

// handleReloadRules drops the cached rule set and loads it again
func (s *Server) handleReloadRules(w http.ResponseWriter, r *http.Request) {
	set, err := s.rules.Reload(r.Context())
	if err != nil {
		s.logger.Error("rules reload failed", zap.String("source", s.rules.SourceName()), zap.Error(err))
		s.analysisError(w, err)
		return
	}
	s.logger.Info("rules reloaded", zap.String("source", set.Source), zap.Any("versions", set.Versions()))
	s.jsonResponse(w, http.StatusOK, rulesResponse(set))
}

func rulesResponse(set *rules.Set) RulesResponse {
	return RulesResponse{Source: set.Source, Versions: set.Versions(), LoadedAt: set.LoadedAt}
}
