package api

import (
	"errors"
	"net/http"

	"github.com/JadonKrys/file-catalog/internal/admission"
	"github.com/JadonKrys/file-catalog/pkg/catalog"
)

// statusFor maps a catalog error code onto an HTTP status.
func statusFor(code catalog.ErrorCode) int {
	switch code {
	case catalog.ErrValidation, catalog.ErrForbiddenField,
		catalog.ErrIdentifierFormat, catalog.ErrAmbiguousIdentifier:
		return http.StatusBadRequest
	case catalog.ErrNotFound:
		return http.StatusNotFound
	case catalog.ErrChecksumMismatch, catalog.ErrReplicaExists, catalog.ErrVersionMismatch:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err for the handler named handler. Errors that are
// not part of the catalog taxonomy become a generic 500.
func (s *Server) writeError(w http.ResponseWriter, handler string, err error) {
	body := map[string]any{}
	status := http.StatusInternalServerError

	var ce *catalog.Error
	switch {
	case errors.Is(err, admission.ErrRejected):
		status = http.StatusTooManyRequests
		body["message"] = err.Error()

	case errors.As(err, &ce):
		status = statusFor(ce.Code)
		body["message"] = ce.Message

		switch {
		case ce.Code == catalog.ErrVersionMismatch:
			body[fieldLinks] = s.urls.fileLinks(ce.ID)
			s.metrics.RecordConflict(ce.Code.String())
		case ce.Code.Conflict():
			body["file"] = s.urls.file(ce.ID)
			s.metrics.RecordConflict(ce.Code.String())
		case ce.Code == catalog.ErrValidation || ce.Code == catalog.ErrForbiddenField:
			body["file"] = s.urls.files()
		case ce.Code == catalog.ErrStoreWrite:
			s.log.Error("%s: %v", handler, err)
			if s.debug {
				body["exception"] = err.Error()
			}
		}

	default:
		s.log.Error("Error in %s: %v", handler, err)
		body["message"] = "Internal error in " + handler
		if s.debug {
			body["exception"] = err.Error()
		}
	}

	if werr := writeJSON(w, status, body); werr != nil {
		s.log.Debug("Failed to write error response: %v", werr)
	}
}
