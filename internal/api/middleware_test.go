package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Devojha408/requirements-gap-analyzer/internal/config"
)

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), CORS())

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Fatalf("unexpected allow origin %q", origin)
	}
	if methods := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(methods, "POST") {
		t.Fatalf("unexpected allow methods %q", methods)
	}
	if headers := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(headers, "x-api-key") {
		t.Fatalf("unexpected allow headers %q", headers)
	}
}

func TestCORSHeadersOnSimpleRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Port:      "3001",
		BaseURL:   "http://langflow.test:7860",
		APIKey:    "server-key",
		FlowID:    "flow-1",
		UploadDir: t.TempDir(),
	}
	handler := NewHandler(newMockEngine(), cfg)
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), CORS())
	handler.RegisterRoutes(router)

	resp := doJSONRequest(t, router, http.MethodGet, "/health", nil, nil)
	assertStatus(t, resp, http.StatusOK)
	if origin := resp.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Fatalf("cors headers missing on simple request, got %q", origin)
	}
}
