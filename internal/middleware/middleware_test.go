package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	"github.com/noah-isme/calendar-scolar-api/internal/service"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
)

type staticTokens map[string]*models.JWTClaims

func (s staticTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type settingsFunc func() (*models.Settings, error)

func (f settingsFunc) Get(ctx context.Context) (*models.Settings, error) { return f() }

func serve(r *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAndRBAC(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := staticTokens{
		"admin":  {UserID: "u1", Role: models.RoleAdmin},
		"editor": {UserID: "u2", Role: models.RoleEditor},
	}
	r := gin.New()
	r.GET("/admin", JWT(tokens), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).UserID)
	})

	cases := []struct {
		name   string
		auth   string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer forged", http.StatusUnauthorized},
		{"editor forbidden", "Bearer editor", http.StatusForbidden},
		{"admin allowed", "bearer admin", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, "/admin", tc.auth)
			assert.Equal(t, tc.status, w.Code)
		})
	}

	w := serve(r, http.MethodGet, "/admin", "Bearer admin")
	assert.Equal(t, "u1", w.Body.String())
}

func TestRBACWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RBAC("ADMIN"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/x", "").Code)
}

func TestCacheControlHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/public", PublicCache(time.Hour), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/subscriber", PrivateCache(time.Hour), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fresh", NoCache(true), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/private", NoCache(false), func(c *gin.Context) { c.Status(http.StatusOK) })

	public := serve(r, http.MethodGet, "/public", "")
	assert.Equal(t, "public, max-age=3600", public.Header().Get("Cache-Control"))

	subscriber := serve(r, http.MethodGet, "/subscriber", "")
	assert.Equal(t, "private, max-age=3600", subscriber.Header().Get("Cache-Control"))

	fresh := serve(r, http.MethodGet, "/fresh", "")
	assert.Equal(t, "no-cache, no-store, must-revalidate", fresh.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", fresh.Header().Get("Pragma"))
	assert.Equal(t, "0", fresh.Header().Get("Expires"))
	assert.Equal(t, "*", fresh.Header().Get("Access-Control-Allow-Origin"))

	private := serve(r, http.MethodGet, "/private", "")
	assert.Empty(t, private.Header().Get("Access-Control-Allow-Origin"))
}

func TestMaintenance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	message := "Actualizăm calendarul"
	current := &models.Settings{}
	var loadErr error
	r := gin.New()
	r.Use(Maintenance(settingsFunc(func() (*models.Settings, error) { return current, loadErr }), zap.NewNop()))
	r.GET("/counties", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/counties", "").Code)

	current = &models.Settings{MaintenanceMode: true}
	w := serve(r, http.MethodGet, "/counties", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "300", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), ErrMaintenance.Message)

	current = &models.Settings{MaintenanceMode: true, MaintenanceMessage: &message}
	w = serve(r, http.MethodGet, "/counties", "")
	assert.Contains(t, w.Body.String(), message)
	assert.Contains(t, w.Body.String(), `"code":"MAINTENANCE"`)

	current, loadErr = nil, errors.New("db down")
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/counties", "").Code)
}

func TestMetricsLabelsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/health"))
	r.GET("/counties/:slug", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/counties/cluj", "")
	serve(r, http.MethodGet, "/counties/ilfov", "")
	serve(r, http.MethodGet, "/wp-login.php", "")
	serve(r, http.MethodGet, "/health", "")

	expected := `
# HELP http_requests_total Total number of HTTP requests
# TYPE http_requests_total counter
http_requests_total{method="GET",path="/counties/:slug",status="200"} 2
http_requests_total{method="GET",path="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "http_requests_total"))
	assert.Equal(t, uint64(3), metrics.Snapshot().RequestsTotal)
}

func TestAuditLogsSuccessfulWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin})
		c.Next()
	}, Audit(zap.New(core)))
	r.GET("/events", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/events", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.DELETE("/events/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(r, http.MethodGet, "/events", "")
	serve(r, http.MethodPost, "/events", "")
	serve(r, http.MethodDelete, "/events/e1", "")

	entries := logs.FilterMessage("admin change").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "u1", fields["user_id"])
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
}
