package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rescuegrid/backend/internal/service"
)

func newTestHandler() *Handler {
	return &Handler{
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReportIncident_ValidationFailed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler()
	r := gin.New()
	r.POST("/api/incidents", h.ReportIncident)

	w := postJSON(t, r, "/api/incidents", map[string]any{
		"service_type": "MEDICAL",
		"latitude":     51.1,
		"longitude":    71.4,
		"severity":     9,
		"reported_by":  "caller",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp map[string]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["error"]["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %v", resp["error"]["code"])
	}
}

func TestReportIncident_RequiresCoordinatesOrAddress(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler()
	r := gin.New()
	r.POST("/api/incidents", h.ReportIncident)

	w := postJSON(t, r, "/api/incidents", map[string]any{
		"service_type": "FIRE",
		"severity":     3,
		"reported_by":  "caller",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestReportIncident_AddressWithoutGeocoder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler()
	r := gin.New()
	r.POST("/api/incidents", h.ReportIncident)

	w := postJSON(t, r, "/api/incidents", map[string]any{
		"service_type": "POLICE",
		"address":      "Astana, Kazakhstan",
		"severity":     2,
		"reported_by":  "caller",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPathID_Invalid(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler()
	r := gin.New()
	r.GET("/api/incidents/:id", h.IncidentDetails)

	req, _ := http.NewRequest(http.MethodGet, "/api/incidents/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
}

func TestDispatchAutomationToggle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler()
	h.Dispatcher = &service.Dispatcher{Logger: zerolog.Nop()}

	r := gin.New()
	r.GET("/api/dispatch/automation", h.DispatchAutomation)
	r.PUT("/api/dispatch/automation", h.SetDispatchAutomation)

	req, _ := http.NewRequest(http.MethodGet, "/api/dispatch/automation", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var state map[string]bool
	json.Unmarshal(w.Body.Bytes(), &state)
	if state["enabled"] {
		t.Fatal("expected automation disabled by default")
	}

	body, _ := json.Marshal(map[string]any{"enabled": true})
	putReq, _ := http.NewRequest(http.MethodPut, "/api/dispatch/automation", bytes.NewReader(body))
	putReq.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, putReq)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !h.Dispatcher.Enabled() {
		t.Fatal("expected automation enabled after toggle")
	}

	// Missing field is rejected.
	putReq, _ = http.NewRequest(http.MethodPut, "/api/dispatch/automation", bytes.NewReader([]byte(`{}`)))
	putReq.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, putReq)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing field, got %d", w.Code)
	}
}
