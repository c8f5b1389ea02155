package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"

	"rentabook/pkg/logger"
)

func TestHealthReportsOK(t *testing.T) {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	router := httprouter.New()
	NewHealthHandler(nil, nil, log).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Redis != "" {
		t.Errorf("unexpected body: %+v", resp)
	}
}
