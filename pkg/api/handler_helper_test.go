package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alice-platform/gateway-engine/pkg/gateway"
	"github.com/alice-platform/gateway-engine/pkg/validation"
)

func newHelperServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(gateway.New(gateway.Config{}), nil)
}

func TestRequestDecoderChaining(t *testing.T) {
	s := newHelperServer(t)

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"device_id":"d1"}`))
	rec := httptest.NewRecorder()

	var connect validation.ConnectRequest
	rd := s.NewRequestDecoder(rec, req).DecodeJSON(&connect).ValidateConnect(&connect)

	if rd.HasError() {
		t.Fatalf("Unexpected error: %v", rd.err)
	}
	if rd.RespondError() {
		t.Error("RespondError should report false without an error")
	}
	if connect.DeviceID != "d1" {
		t.Errorf("Expected d1, got %q", connect.DeviceID)
	}
}

func TestRequestDecoderInvalidJSON(t *testing.T) {
	s := newHelperServer(t)

	req := httptest.NewRequest("POST", "/", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()

	var connect validation.ConnectRequest
	rd := s.NewRequestDecoder(rec, req).DecodeJSON(&connect).ValidateConnect(&connect)

	if !rd.HasError() {
		t.Fatal("Expected decode error")
	}
	if !rd.RespondError() {
		t.Fatal("RespondError should report true")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}

	envelope := decode[ErrorResponse](t, rec)
	if envelope.Kind != KindInvalidInput {
		t.Errorf("Expected %s kind, got %s", KindInvalidInput, envelope.Kind)
	}
}

func TestRequestDecoderValidationFailure(t *testing.T) {
	s := newHelperServer(t)

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"device_id":""}`))
	rec := httptest.NewRecorder()

	var connect validation.ConnectRequest
	rd := s.NewRequestDecoder(rec, req).DecodeJSON(&connect).ValidateConnect(&connect)

	if !rd.HasError() {
		t.Fatal("Expected validation error")
	}
	rd.RespondError()
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestPathExtractor(t *testing.T) {
	s := newHelperServer(t)
	const prefix = "/api/v1/gateway/connections/"

	tests := []struct {
		name     string
		path     string
		wantID   string
		wantRest string
		wantOK   bool
	}{
		{"bare id", prefix + "abc-123", "abc-123", "", true},
		{"id with subresource", prefix + "abc-123/syncs", "abc-123", "syncs", true},
		{"trailing slash", prefix + "abc-123/", "abc-123", "", true},
		{"empty id", prefix, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()

			id, rest, ok := s.NewPathExtractor(rec, req).ExtractID(prefix)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if id != tt.wantID || rest != tt.wantRest {
				t.Errorf("got (%q, %q), want (%q, %q)", id, rest, tt.wantID, tt.wantRest)
			}
			if !tt.wantOK && rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400 response, got %d", rec.Code)
			}
		})
	}
}

func TestMethodRouterDispatch(t *testing.T) {
	s := newHelperServer(t)

	var called string
	req := httptest.NewRequest("DELETE", "/", nil)
	rec := httptest.NewRecorder()

	s.NewMethodRouter(rec, req).
		Get(func() { called = "get" }).
		Delete(func() { called = "delete" }).
		NotAllowed()

	if called != "delete" {
		t.Errorf("Expected delete handler, got %q", called)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("No error response expected, got %d", rec.Code)
	}
}

func TestMethodRouterNotAllowed(t *testing.T) {
	s := newHelperServer(t)

	req := httptest.NewRequest("PATCH", "/", nil)
	rec := httptest.NewRecorder()

	s.NewMethodRouter(rec, req).
		Get(func() { t.Error("GET handler should not run") }).
		Post(func() { t.Error("POST handler should not run") }).
		NotAllowed()

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}
