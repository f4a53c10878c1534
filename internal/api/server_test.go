package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fixmyk8s/kubecuro/internal/scanner"
	"github.com/fixmyk8s/kubecuro/internal/types"
)

func newTestServer() *Server {
	return NewServer(scanner.New(nil))
}

func TestNewServer(t *testing.T) {
	s := newTestServer()
	if s == nil {
		t.Fatal("NewServer() returned nil")
	}
	if s.router == nil {
		t.Error("NewServer() did not initialize router")
	}
}

func TestHealthCheckHandler(t *testing.T) {
	s := newTestServer()
	req, err := http.NewRequest("GET", "/api/v1/health", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("healthCheck handler returned wrong status code: got %v want %v",
			status, http.StatusOK)
	}

	expected := `{"status":"healthy"}` + "\n" // json.Encoder adds a newline
	if rr.Body.String() != expected {
		t.Errorf("healthCheck handler returned unexpected body: got %v want %v",
			rr.Body.String(), expected)
	}
}

func TestListRulesHandler(t *testing.T) {
	s := newTestServer()
	req, _ := http.NewRequest("GET", "/api/v1/rules", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("rules handler returned status %d", rr.Code)
	}

	var body struct {
		Deprecations []map[string]interface{} `json:"deprecations"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Deprecations) == 0 {
		t.Error("expected a non-empty deprecation table")
	}
}

func TestScanHandler(t *testing.T) {
	manifest := `apiVersion: v1
kind: Service
metadata:
  name: web
spec:
  selector:
    app: web
  ports:
    - port: 80
`
	s := newTestServer()
	req, _ := http.NewRequest("POST", "/api/v1/scan?name=ci.yaml", strings.NewReader(manifest))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("scan handler returned status %d: %s", rr.Code, rr.Body.String())
	}

	var report types.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Target != "ci.yaml" {
		t.Errorf("expected target ci.yaml, got %q", report.Target)
	}

	found := false
	for _, f := range report.Findings {
		if f.Code == "GHOST" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a GHOST finding for the selector with no workload, got %+v", report.Findings)
	}
}

func TestScanHandlerEmptyBody(t *testing.T) {
	s := newTestServer()
	req, _ := http.NewRequest("POST", "/api/v1/scan", strings.NewReader(""))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty body, got %d", rr.Code)
	}
}

func TestScanHandlerWrongMethod(t *testing.T) {
	s := newTestServer()
	req, _ := http.NewRequest("GET", "/api/v1/scan", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET scan, got %d", rr.Code)
	}
}
