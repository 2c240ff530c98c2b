package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/alice-platform/gateway-engine/pkg/validation"
)

// requestDecoder decodes and validates request bodies.
// It provides a fluent interface for common request handling patterns.
type requestDecoder struct {
	r          *http.Request
	w          http.ResponseWriter
	server     *Server
	err        error
	statusCode int
}

// NewRequestDecoder creates a new request decoder for the given request.
func (s *Server) NewRequestDecoder(w http.ResponseWriter, r *http.Request) *requestDecoder {
	return &requestDecoder{
		r:      r,
		w:      w,
		server: s,
	}
}

// DecodeJSON decodes the request body into the provided struct.
// Returns the decoder for chaining. Check HasError() after calling.
func (rd *requestDecoder) DecodeJSON(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := json.NewDecoder(rd.r.Body).Decode(v); err != nil {
		rd.err = fmt.Errorf("invalid request body: %w", err)
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// ValidateConnect validates a connect request.
// Returns the decoder for chaining.
func (rd *requestDecoder) ValidateConnect(req *validation.ConnectRequest) *requestDecoder {
	return rd.validate(func() error { return validation.ValidateConnectRequest(req) })
}

// ValidateSync validates a sync request.
func (rd *requestDecoder) ValidateSync(req *validation.SyncRequest) *requestDecoder {
	return rd.validate(func() error { return validation.ValidateSyncRequest(req) })
}

// ValidateTransform validates a transform request.
func (rd *requestDecoder) ValidateTransform(req *validation.TransformRequest) *requestDecoder {
	return rd.validate(func() error { return validation.ValidateTransformRequest(req) })
}

// ValidateMesh validates a mesh request.
func (rd *requestDecoder) ValidateMesh(req *validation.MeshRequest) *requestDecoder {
	return rd.validate(func() error { return validation.ValidateMeshRequest(req) })
}

func (rd *requestDecoder) validate(fn func() error) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := fn(); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// HasError returns true if any error occurred during decoding/validation.
func (rd *requestDecoder) HasError() bool {
	return rd.err != nil
}

// RespondError sends the error response and returns true if there was an error.
// Returns false if no error occurred.
func (rd *requestDecoder) RespondError() bool {
	if rd.err == nil {
		return false
	}
	rd.server.respondError(rd.w, rd.statusCode, KindInvalidInput, rd.err.Error())
	return true
}

// pathExtractor extracts identifiers from URL paths.
type pathExtractor struct {
	w      http.ResponseWriter
	server *Server
	path   string
}

// NewPathExtractor creates a new path extractor.
func (s *Server) NewPathExtractor(w http.ResponseWriter, r *http.Request) *pathExtractor {
	return &pathExtractor{
		w:      w,
		server: s,
		path:   r.URL.Path,
	}
}

// ExtractID returns the path segment after the given prefix, with any
// trailing subpath split off. Sends an error response and reports false when
// the segment is empty.
func (pe *pathExtractor) ExtractID(prefix string) (id, rest string, ok bool) {
	if !strings.HasPrefix(pe.path, prefix) {
		pe.server.respondError(pe.w, http.StatusBadRequest, KindInvalidInput, "Invalid path")
		return "", "", false
	}
	tail := strings.TrimPrefix(pe.path, prefix)
	tail = strings.Trim(tail, "/")
	if tail == "" {
		pe.server.respondError(pe.w, http.StatusBadRequest, KindInvalidInput, "Missing identifier in path")
		return "", "", false
	}

	if i := strings.IndexByte(tail, '/'); i >= 0 {
		return tail[:i], tail[i+1:], true
	}
	return tail, "", true
}

// methodRouter routes requests based on HTTP method.
// Provides a cleaner alternative to switch statements for method routing.
type methodRouter struct {
	w       http.ResponseWriter
	r       *http.Request
	server  *Server
	handled bool
}

// NewMethodRouter creates a new method router.
func (s *Server) NewMethodRouter(w http.ResponseWriter, r *http.Request) *methodRouter {
	return &methodRouter{
		w:      w,
		r:      r,
		server: s,
	}
}

// Get handles GET requests with the provided handler.
func (mr *methodRouter) Get(handler func()) *methodRouter {
	if !mr.handled && mr.r.Method == http.MethodGet {
		handler()
		mr.handled = true
	}
	return mr
}

// Post handles POST requests with the provided handler.
func (mr *methodRouter) Post(handler func()) *methodRouter {
	if !mr.handled && mr.r.Method == http.MethodPost {
		handler()
		mr.handled = true
	}
	return mr
}

// Delete handles DELETE requests with the provided handler.
func (mr *methodRouter) Delete(handler func()) *methodRouter {
	if !mr.handled && mr.r.Method == http.MethodDelete {
		handler()
		mr.handled = true
	}
	return mr
}

// NotAllowed sends a 405 response if no method matched.
func (mr *methodRouter) NotAllowed() {
	if !mr.handled {
		mr.server.respondError(mr.w, http.StatusMethodNotAllowed, KindInvalidInput, "Method not allowed")
	}
}
