package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gateway-dashboard/internal/audit"
	"gateway-dashboard/internal/auth"
	"gateway-dashboard/internal/config"
	"gateway-dashboard/internal/metrics"
	"gateway-dashboard/internal/session"
	"gateway-dashboard/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type navEntry struct {
	Kind  string     `json:"kind"`
	Name  string     `json:"name"`
	To    string     `json:"to"`
	Icon  string     `json:"icon"`
	Items []navEntry `json:"items"`
}

type testEnv struct {
	router   *gin.Engine
	sessions session.Store
	reg      *prometheus.Registry
	auth     *auth.Manager
	events   *audit.MemoryRepo
}

func newTestEnv(t *testing.T, store session.Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	hash, err := users.HashPassword("pw")
	require.NoError(t, err)
	svc := users.NewService(users.NewMemoryRepo(
		users.User{ID: "u-admin", Username: "root", PasswordHash: hash, Role: "admin"},
		users.User{ID: "u-user", Username: "dev", PasswordHash: hash, Role: "user"},
	))

	if store == nil {
		store = session.NewMemoryStore()
	}
	reg := prometheus.NewRegistry()
	events := audit.NewMemoryRepo()

	r := gin.New()
	RegisterV1(r, Handlers{
		Auth:       m,
		Users:      svc,
		UserList:   svc,
		Sessions:   store,
		SessionTTL: time.Hour,
		Metrics:    metrics.New(reg),
		Audit:      audit.NewService(events),
	})
	return &testEnv{router: r, sessions: store, reg: reg, auth: m, events: events}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username string) tokenResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"username": username, "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (e *testEnv) navigation(t *testing.T, token string) []navEntry {
	t.Helper()
	w := e.do(t, http.MethodGet, "/v1/navigation", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Items []navEntry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.Items
}

func names(entries []navEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestNavigation_Anonymous(t *testing.T) {
	env := newTestEnv(t, nil)

	items := env.navigation(t, "")
	assert.Equal(t, []string{"Dashboard", "Apis"}, names(items))
	assert.Equal(t, "item", items[0].Kind)
	assert.Equal(t, "/dashboard", items[0].To)
	assert.Equal(t, "speedometer-icon", items[0].Icon)

	// An invalid token is treated like no token.
	assert.Equal(t, []string{"Dashboard", "Apis"}, names(env.navigation(t, "not-a-jwt")))
}

func TestNavigation_AdminSession(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.login(t, "root")
	assert.Equal(t, "admin", tok.Role)

	items := env.navigation(t, tok.AccessToken)
	require.Len(t, items, 4)
	assert.Equal(t, []string{"Dashboard", "Apis", "Configuration", "User"}, names(items))

	cfg := items[2]
	assert.Equal(t, "group", cfg.Kind)
	assert.Equal(t, "#", cfg.To)
	assert.Equal(t, "settings-icon", cfg.Icon)
	assert.Equal(t, []string{"Server", "Apis Template"}, names(cfg.Items))
	assert.Equal(t, "/configuration/template", cfg.Items[1].To)

	assert.Equal(t, "item", items[3].Kind)
	assert.Equal(t, "/user", items[3].To)

	assert.Equal(t, 1.0, counterValue(t, env.reg, "gateway_dashboard_navigation_builds_total", "privileged"))
}

func TestNavigation_UserSession(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.login(t, "dev")

	assert.Equal(t, []string{"Dashboard", "Apis"}, names(env.navigation(t, tok.AccessToken)))
}

func TestNavigation_FollowsSessionStateNotToken(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.login(t, "dev")

	claims, err := env.auth.Verify(tok.AccessToken, auth.TokenTypeAccess, time.Now())
	require.NoError(t, err)

	require.NoError(t, env.sessions.Set(context.Background(), claims.SessionID, session.KeyRole, "admin", time.Hour))
	assert.Len(t, env.navigation(t, tok.AccessToken), 4)

	require.NoError(t, env.sessions.Set(context.Background(), claims.SessionID, session.KeyRole, "ADMIN", time.Hour))
	assert.Len(t, env.navigation(t, tok.AccessToken), 2)
}

func TestNavigation_Idempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.login(t, "root")

	assert.Equal(t, env.navigation(t, tok.AccessToken), env.navigation(t, tok.AccessToken))
}

func TestLogout_DropsPrivilegedMenu(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.login(t, "root")
	require.Len(t, env.navigation(t, tok.AccessToken), 4)

	w := env.do(t, http.MethodPost, "/v1/auth/logout", tok.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, []string{"Dashboard", "Apis"}, names(env.navigation(t, tok.AccessToken)))

	evs := env.events.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, audit.EventTypeLogin, evs[0].Type)
	assert.Equal(t, audit.EventTypeLogout, evs[1].Type)
	assert.Equal(t, "u-admin", evs[1].ActorUserID)
	assert.Equal(t, evs[0].SessionID, evs[1].SessionID)
}

type brokenStore struct{ session.Store }

func (brokenStore) Get(context.Context, string, string) (string, error) {
	return "", errors.New("redis: connection refused")
}

func TestNavigation_StoreFailureServesBaseMenu(t *testing.T) {
	env := newTestEnv(t, brokenStore{Store: session.NewMemoryStore()})
	tok := env.login(t, "root")

	assert.Equal(t, []string{"Dashboard", "Apis"}, names(env.navigation(t, tok.AccessToken)))
	assert.Equal(t, 1.0, counterValue(t, env.reg, "gateway_dashboard_role_reads_total", "error"))
}

func TestLogin_Rejections(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "root", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	evs := env.events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, audit.EventTypeLoginFailed, evs[0].Type)
	assert.Equal(t, "root", evs[0].Username)

	w = env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "root"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe_RequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/v1/me", "", nil).Code)

	tok := env.login(t, "dev")
	w := env.do(t, http.MethodGet, "/v1/me", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u-user"`)
}

func TestAdminUsers_RequiresAdminRole(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/v1/admin/users", "", nil).Code)

	userTok := env.login(t, "dev")
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/v1/admin/users", userTok.AccessToken, nil).Code)

	adminTok := env.login(t, "root")
	w := env.do(t, http.MethodGet, "/v1/admin/users", adminTok.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"dev"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLogout_RevokesSessionBoundTokens(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.login(t, "root")
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/admin/users", tok.AccessToken, nil).Code)

	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/v1/auth/logout", tok.AccessToken, nil).Code)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/v1/admin/users", tok.AccessToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/v1/me", tok.AccessToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/v1/auth/logout", tok.AccessToken, nil).Code)
	assert.Len(t, env.events.Events(), 2, "a refused second logout is not audited")
}

func TestAdminUsers_FollowsSessionRole(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.login(t, "root")

	claims, err := env.auth.Verify(tok.AccessToken, auth.TokenTypeAccess, time.Now())
	require.NoError(t, err)
	require.NoError(t, env.sessions.Set(context.Background(), claims.SessionID, session.KeyRole, "user", time.Hour))

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/v1/admin/users", tok.AccessToken, nil).Code)
}

func TestProtectedRoutes_StoreFailure(t *testing.T) {
	env := newTestEnv(t, brokenStore{Store: session.NewMemoryStore()})
	tok := env.login(t, "dev")

	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/v1/me", tok.AccessToken, nil).Code)
}

func (e *testEnv) refresh(t *testing.T, refreshToken string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": refreshToken})
}

func TestRefresh_RotatesPairWithSessionRole(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.login(t, "dev")

	claims, err := env.auth.Verify(tok.AccessToken, auth.TokenTypeAccess, time.Now())
	require.NoError(t, err)
	require.NoError(t, env.sessions.Set(context.Background(), claims.SessionID, session.KeyRole, "admin", time.Minute))

	w := env.refresh(t, tok.RefreshToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var next tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &next))
	assert.Equal(t, "admin", next.Role)
	assert.NotEqual(t, tok.AccessToken, next.AccessToken)
	assert.False(t, next.RefreshExpiresAt.IsZero())

	nextClaims, err := env.auth.Verify(next.AccessToken, auth.TokenTypeAccess, time.Now())
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, nextClaims.SessionID)
	assert.Equal(t, "admin", nextClaims.Role)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/admin/users", next.AccessToken, nil).Code)
	assert.Len(t, env.navigation(t, next.AccessToken), 4)

	evs := env.events.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, audit.EventTypeRefresh, evs[1].Type)
	assert.Equal(t, claims.SessionID, evs[1].SessionID)
}

func TestRefresh_Rejections(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.login(t, "root")

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]string{}).Code)
	assert.Equal(t, http.StatusUnauthorized, env.refresh(t, "not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, env.refresh(t, tok.AccessToken).Code, "access tokens cannot refresh")

	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/v1/auth/logout", tok.AccessToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.refresh(t, tok.RefreshToken).Code)
}

func TestRefresh_StoreFailure(t *testing.T) {
	env := newTestEnv(t, brokenStore{Store: session.NewMemoryStore()})
	tok := env.login(t, "root")

	assert.Equal(t, http.StatusServiceUnavailable, env.refresh(t, tok.RefreshToken).Code)
}

// counterValue reads the counter child with the single label value from reg.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if len(m.GetLabel()) == 1 && m.GetLabel()[0].GetValue() == label {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("counter %s{%s} not found", name, label)
	return 0
}
