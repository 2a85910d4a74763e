package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/live"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-secret"

// newRouter mounts handlers without services; only requests stopped by
// middleware may be sent through it.
func newRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Format:        handlers.NewFormatHandler(nil, nil),
		League:        handlers.NewLeagueHandler(nil),
		Standing:      handlers.NewStandingHandler(nil, nil),
		Discipline:    handlers.NewDisciplineHandler(nil),
		Configuration: handlers.NewConfigurationHandler(nil),
		Invite:        handlers.NewInviteHandler(nil),
		WebSocket:     handlers.NewWebSocketHandler(live.NewHub(logger), nil, []string{"*"}, logger),
	}, Options{JWTSecret: testSecret, AllowedOrigins: []string{"*"}, Logger: logger})
	return router
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRoutes_MutationsRequireOrganizer(t *testing.T) {
	router := newRouter()
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/formats"},
		{http.MethodDelete, "/api/v1/formats/1"},
		{http.MethodPost, "/api/v1/leagues"},
		{http.MethodPost, "/api/v1/leagues/1/format"},
		{http.MethodPut, "/api/v1/leagues/1/discipline-rules"},
		{http.MethodPost, "/api/v1/leagues/1/discipline-rules/reset-yellows"},
		{http.MethodGet, "/api/v1/leagues/1/invites"},
		{http.MethodPost, "/api/v1/phases/1/results"},
		{http.MethodPost, "/api/v1/phases/1/standings/recalculate"},
		{http.MethodPost, "/api/v1/phases/1/standings/export"},
		{http.MethodPatch, "/api/v1/standings/1"},
		{http.MethodPost, "/api/v1/teams"},
	}
	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			req := httptest.NewRequest(route.method, route.path, nil)
			req.Header.Set("Authorization", bearer(t, "player"))
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestRoutes_AcceptInviteNeedsAnyAccount(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/invites/tok/accept", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_BadIDNeverReachesService(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/phases/abc/standings", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutes_SwaggerDocument(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "League System API")
}
