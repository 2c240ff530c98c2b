package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alice-platform/gateway-engine/pkg/logging"
	"github.com/alice-platform/gateway-engine/pkg/mesh"
	"github.com/alice-platform/gateway-engine/pkg/protocol"
	"github.com/alice-platform/gateway-engine/pkg/session"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("error encoding JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, kind, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Kind:    kind,
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}

// respondDomainError maps sentinel errors from the domain packages onto the
// error envelope. Anything unrecognized is an internal error: logged in
// full, reported generically.
func (s *Server) respondDomainError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyDeviceID),
		errors.Is(err, mesh.ErrNoDevices),
		errors.Is(err, mesh.ErrUnknownTopology):
		s.respondError(w, http.StatusBadRequest, KindInvalidInput, err.Error())

	case errors.Is(err, session.ErrUnknownConnection):
		s.respondError(w, http.StatusNotFound, KindUnknownConnection, err.Error())

	case errors.Is(err, protocol.ErrUnsupportedProtocol):
		s.respondError(w, http.StatusBadRequest, KindUnsupportedProtocol, err.Error())

	case errors.Is(err, mesh.ErrUnknownMesh):
		s.respondError(w, http.StatusNotFound, KindNotFound, err.Error())

	default:
		s.respondError(w, http.StatusInternalServerError, KindInternal, sanitizeError(s.logger, err, operation))
	}
}

// sanitizeError converts an internal error to a user-safe message.
// Internal details are logged but not exposed.
func sanitizeError(logger logging.Logger, err error, operation string) string {
	if err == nil {
		return ""
	}
	logger.Error("internal error", logging.Operation(operation), logging.Error(err))
	return operation + " failed"
}
