package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	service "github.com/okian/skinsight/internal/app"
	"github.com/okian/skinsight/pkg/logger"
)

type uploadResponse struct {
	ImageID string `json:"image_id"`
}

// handleUpload handles POST /upload with a multipart "file" field.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	filename, content, err := s.readUpload(r)
	if err != nil {
		s.rejectMalformed(w, r, err)
		return
	}

	id, err := s.svc.Upload(r.Context(), service.UploadInput{
		Filename:   filename,
		Content:    content,
		Credential: r.Header.Get(HeaderAPIKey),
		ReadLimit:  s.maxUploadBytes,
	})
	if err != nil {
		s.logFailure(r, "upload failed", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{ImageID: id})
}

// readUpload streams the multipart body to the file part and reads at most
// maxUploadBytes+1 bytes of it, so an oversize upload is never fully buffered.
func (s *Server) readUpload(r *http.Request) (string, []byte, error) {
	const op = "api.readUpload"

	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: expected multipart/form-data", ErrBadRequest, op)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, fmt.Errorf("%w: %w", ErrBadRequest, ErrMissingFile)
		}
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %w", ErrBadRequest, op, err)
		}
		if part.FormName() != FormFieldFile {
			_ = part.Close()
			continue
		}
		return readPart(part, s.maxUploadBytes)
	}
}

func readPart(part *multipart.Part, limit int64) (string, []byte, error) {
	defer func() { _ = part.Close() }()

	content, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return "", nil, fmt.Errorf("%w: reading file: %w", ErrBadRequest, err)
	}
	return part.FileName(), content, nil
}

// logFailure logs infrastructure failures at error level and rejected
// requests at debug level.
func (s *Server) logFailure(r *http.Request, msg string, err error) {
	fields := []logger.Field{
		logger.String("path", r.URL.Path),
		logger.Error(err),
	}
	if isClientError(err) {
		s.logger.Debug(r.Context(), msg, fields...)
		return
	}
	s.logger.Error(r.Context(), msg, fields...)
}
