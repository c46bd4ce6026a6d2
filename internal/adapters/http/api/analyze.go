package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	service "github.com/okian/skinsight/internal/app"
)

// analyzeRequest mirrors the OpenAPI schema for POST /analyze. Only a missing
// or null image_id is malformed; any string, empty included, is looked up.
type analyzeRequest struct {
	ImageID *string `json:"image_id" validate:"required"`
}

// handleAnalyze handles POST /analyze.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.handleAnalyze"

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.rejectMalformed(w, r, fmt.Errorf("%w: %s: invalid JSON body", ErrBadRequest, op))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.rejectMalformed(w, r, fmt.Errorf("%w: image_id is required", ErrBadRequest))
		return
	}

	result, err := s.svc.Analyze(r.Context(), service.AnalyzeInput{
		ImageID:    *req.ImageID,
		Credential: r.Header.Get(HeaderAPIKey),
	})
	if err != nil {
		s.logFailure(r, "analysis failed", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
