package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.GET("/api/counties", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func send(r *gin.Engine, method, origin string, preflight bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/counties", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListedOriginIsEchoedWithCredentials(t *testing.T) {
	w := send(newRouter([]string{"https://CalendarScolar.ro/"}), http.MethodGet, "https://calendarscolar.ro", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://calendarscolar.ro", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestUnknownOriginGetsNoHeaders(t *testing.T) {
	w := send(newRouter([]string{"https://calendarscolar.ro"}), http.MethodGet, "https://evil.example", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestWildcardNeverAllowsCredentials(t *testing.T) {
	w := send(newRouter([]string{"*"}), http.MethodGet, "https://any.example", false)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRequestWithoutOriginPassesUntouched(t *testing.T) {
	w := send(newRouter(nil), http.MethodGet, "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightShortCircuits(t *testing.T) {
	w := send(newRouter(nil), http.MethodOptions, "https://any.example", true)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
}
