package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gateway-dashboard/internal/auth"
	"gateway-dashboard/internal/config"
	"gateway-dashboard/internal/httpapi"
	"gateway-dashboard/internal/metrics"
	"gateway-dashboard/internal/session"

	"github.com/gin-gonic/gin"
)

func newRouter(t *testing.T, ready func(context.Context) error) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := auth.NewManager(config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	reg := metrics.NewRegistry()
	r := gin.New()
	registerRoutes(r, httpapi.Handlers{
		Auth:     m,
		Sessions: session.NewMemoryStore(),
		Metrics:  metrics.New(reg),
	}, reg, ready)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPublicRoutes(t *testing.T) {
	r := newRouter(t, func(context.Context) error { return nil })

	if w := get(r, "/healthz"); w.Code != 200 {
		t.Fatalf("healthz: %d", w.Code)
	}
	if w := get(r, "/readyz"); w.Code != 200 {
		t.Fatalf("readyz: %d", w.Code)
	}

	get(r, "/v1/navigation")
	w := get(r, "/metrics")
	if w.Code != 200 || !strings.Contains(w.Body.String(), `gateway_dashboard_navigation_builds_total{menu="base"} 1`) {
		t.Fatalf("metrics missing navigation counter: %d %s", w.Code, w.Body.String())
	}
}

func TestReadyzReportsDependencyFailure(t *testing.T) {
	r := newRouter(t, func(context.Context) error { return errors.New("db down") })
	if w := get(r, "/readyz"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
