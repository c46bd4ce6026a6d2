package api

import (
	"errors"
	"net/http"

	"github.com/okian/skinsight/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrMissingFile = errors.New("file field is required")
)

// Error codes returned in the response body.
const (
	codeUnauthorized = "unauthorized"
	codeBadRequest   = "bad_request"
	codeNotFound     = "not_found"
	codeInternal     = "internal_error"
)

// writeServiceError maps a service error to its HTTP status and body.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		verr *model.ValidationError
		nerr *model.NotFoundError
	)
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		writeError(w, http.StatusForbidden, codeUnauthorized, "Could not validate credentials")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, string(verr.Kind), verr.Message)
	case errors.As(err, &nerr):
		writeError(w, http.StatusNotFound, codeNotFound, nerr.Error())
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
	}
}

// rejectMalformed answers a request that could not be decoded. A bad
// credential still wins over a bad body.
func (s *Server) rejectMalformed(w http.ResponseWriter, r *http.Request, err error) {
	if authErr := s.svc.Authorize(r.Context(), r.Header.Get(HeaderAPIKey)); authErr != nil {
		writeServiceError(w, authErr)
		return
	}
	writeServiceError(w, err)
}

func isClientError(err error) bool {
	return errors.Is(err, model.ErrUnauthorized) ||
		errors.Is(err, model.ErrValidation) ||
		errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, ErrBadRequest)
}
