package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alice-platform/gateway-engine/pkg/logging"
)

// --- BodySizeLimit Tests ---

func TestBodySizeLimit_AllowsSmallRequest(t *testing.T) {
	handler := BodySizeLimit(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))

	req := httptest.NewRequest("POST", "/", strings.NewReader("small body"))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestBodySizeLimit_RejectsLargeContentLength(t *testing.T) {
	handler := BodySizeLimit(100)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called for oversized request")
	}))

	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	req.ContentLength = 1000 // Larger than limit

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status %d, got %d", http.StatusRequestEntityTooLarge, rr.Code)
	}
}

func TestBodySizeLimit_LimitsActualBody(t *testing.T) {
	handler := BodySizeLimit(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Body too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	largeBody := strings.Repeat("x", 100)
	req := httptest.NewRequest("POST", "/", strings.NewReader(largeBody))
	req.ContentLength = -1 // Unknown content length

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status %d, got %d", http.StatusRequestEntityTooLarge, rr.Code)
	}
}

// --- PanicRecovery Tests ---

func TestPanicRecovery_HandlesNormalRequest(t *testing.T) {
	handler := PanicRecovery(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestPanicRecovery_RecoversFromPanic(t *testing.T) {
	handler := PanicRecovery(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if strings.Contains(rr.Body.String(), "exploded") {
		t.Error("Panic details should not leak to the client")
	}
}

// --- RequestID Tests ---

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if seen == "" {
		t.Error("Expected a generated request ID in context")
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected request ID response header")
	}
}

func TestRequestID_PreservesClientID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "client-id-42")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if seen != "client-id-42" {
		t.Errorf("Expected client-id-42, got %q", seen)
	}
}

func TestRequestID_SanitizesClientID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "bad<script>id")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if strings.ContainsAny(seen, "<>") {
		t.Errorf("Request ID was not sanitized: %q", seen)
	}
}

// --- Logging Tests ---

func TestLogging_EmitsStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.InfoLevel)

	handler := RequestID()(Logging(logger, GetRequestID)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest("POST", "/api/v1/gateway/connect", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	var entry logging.LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}
	if entry.Fields["method"] != "POST" {
		t.Errorf("Expected method POST, got %v", entry.Fields["method"])
	}
	if entry.Fields["status"] != float64(http.StatusCreated) {
		t.Errorf("Expected status 201, got %v", entry.Fields["status"])
	}
	if id, ok := entry.Fields["request_id"].(string); !ok || id == "" {
		t.Error("Expected request_id field")
	}
}

// --- Metrics Tests ---

type fakeRecorder struct {
	requests  int
	inFlight  int
	lastPath  string
	lastCode  string
	respSizes []float64
}

func (f *fakeRecorder) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	f.requests++
	f.lastPath = path
	f.lastCode = status
}

func (f *fakeRecorder) RecordResponseSize(method, path string, size float64) {
	f.respSizes = append(f.respSizes, size)
}

func (f *fakeRecorder) IncHTTPRequestsInFlight() { f.inFlight++ }
func (f *fakeRecorder) DecHTTPRequestsInFlight() { f.inFlight-- }

func TestMetrics_RecordsRequest(t *testing.T) {
	recorder := &fakeRecorder{}
	handler := Metrics(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest("GET", "/api/v1/gateway/stats", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if recorder.requests != 1 {
		t.Errorf("Expected 1 recorded request, got %d", recorder.requests)
	}
	if recorder.lastCode != "418" {
		t.Errorf("Expected status 418, got %s", recorder.lastCode)
	}
	if recorder.inFlight != 0 {
		t.Errorf("In-flight gauge should balance out, got %d", recorder.inFlight)
	}
	if len(recorder.respSizes) != 1 || recorder.respSizes[0] != float64(len("short and stout")) {
		t.Errorf("Unexpected response sizes: %v", recorder.respSizes)
	}
}

func TestMetrics_NilRecorderPassesThrough(t *testing.T) {
	handler := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
}

// --- CORS Tests ---

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	cfg := &CORSConfig{
		AllowedOrigins: []string{"https://console.alice-platform.com"},
		AllowedMethods: []string{"GET", "POST"},
	}
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://console.alice-platform.com")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://console.alice-platform.com" {
		t.Errorf("Unexpected allow-origin header: %q", got)
	}
}

func TestCORS_RejectsUnknownOriginPreflight(t *testing.T) {
	cfg := &CORSConfig{AllowedOrigins: []string{"https://console.alice-platform.com"}}
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not run for rejected preflight")
	}))

	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for unknown origin preflight, got %d", rr.Code)
	}
}

func TestCORS_WildcardAllowsAll(t *testing.T) {
	cfg := &CORSConfig{AllowedOrigins: []string{"*"}}
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://anything.example.com")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://anything.example.com" {
		t.Errorf("Wildcard should echo the origin, got %q", got)
	}
}

// --- SecurityHeaders Tests ---

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected nosniff header")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("Expected frame options header")
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS should be absent without TLS")
	}
}
