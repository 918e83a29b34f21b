package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	"github.com/noah-isme/calendar-scolar-api/pkg/ics"
)

func decodeEnvelope(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestRouterNationalFeedHeaders(t *testing.T) {
	f := newRouterFixture()

	w := f.do(http.MethodGet, "/api/calendar", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ics.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="calendar-scolar.ics"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
}

func TestRouterCountyFeedHeadersAndClient(t *testing.T) {
	f := newRouterFixture()

	req := f.do(http.MethodGet, "/api/calendar/county/cluj", "", "")

	require.Equal(t, http.StatusOK, req.Code)
	assert.Equal(t, ics.ContentType, req.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", req.Header().Get("Cache-Control"))
	assert.Equal(t, "*", req.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, req.Header().Get("Content-Disposition"))
	require.NotNil(t, f.feeds.lastClient)
	assert.NotEmpty(t, f.feeds.lastClient.IP)
}

func TestRouterCountyFeedUnknownCounty(t *testing.T) {
	f := newRouterFixture()

	w := f.do(http.MethodGet, "/api/calendar/county/atlantida", "", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	payload := decodeEnvelope(t, w.Body.Bytes())
	assert.Contains(t, payload, "error")
}

func TestRouterPremiumFeed(t *testing.T) {
	f := newRouterFixture()

	ok := f.do(http.MethodGet, "/api/calendar/premium/good", "", "")
	require.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, `attachment; filename="calendar-scolar-premium.ics"`, ok.Header().Get("Content-Disposition"))
	assert.Equal(t, "private, max-age=3600", ok.Header().Get("Cache-Control"))

	bad := f.do(http.MethodGet, "/api/calendar/premium/forged", "", "")
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
}

func TestRouterCountyExports(t *testing.T) {
	f := newRouterFixture()

	csv := f.do(http.MethodGet, "/api/calendar/county/cluj/export.csv", "", "")
	require.Equal(t, http.StatusOK, csv.Code)
	assert.Equal(t, "csv", f.feeds.lastFormat)
	assert.Equal(t, `attachment; filename="calendar-scolar-cluj.csv"`, csv.Header().Get("Content-Disposition"))

	pdf := f.do(http.MethodGet, "/api/calendar/county/cluj/export.pdf", "", "")
	require.Equal(t, http.StatusOK, pdf.Code)
	assert.Equal(t, "application/pdf", pdf.Header().Get("Content-Type"))
}

func TestRouterMaintenanceBlocksPublicJSONOnly(t *testing.T) {
	f := newRouterFixture()
	message := "Revenim curând"
	f.settings.settings.MaintenanceMode = true
	f.settings.settings.MaintenanceMessage = &message

	counties := f.do(http.MethodGet, "/api/counties", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, counties.Code)
	assert.Equal(t, "300", counties.Header().Get("Retry-After"))
	assert.Contains(t, counties.Body.String(), message)

	feed := f.do(http.MethodGet, "/api/calendar/county/cluj", "", "")
	assert.Equal(t, http.StatusOK, feed.Code)

	admin := f.do(http.MethodGet, "/api/v1/admin/settings", adminToken, "")
	assert.Equal(t, http.StatusOK, admin.Code)
}

func TestRouterPublicCounties(t *testing.T) {
	f := newRouterFixture()

	list := f.do(http.MethodGet, "/api/counties", "", "")
	require.Equal(t, http.StatusOK, list.Code)
	require.NotNil(t, f.counties.lastFilter.Active)
	assert.True(t, *f.counties.lastFilter.Active)

	detail := f.do(http.MethodGet, "/api/counties/cluj", "", "")
	assert.Equal(t, http.StatusOK, detail.Code)

	f.counties.detail.Active = false
	hidden := f.do(http.MethodGet, "/api/counties/cluj", "", "")
	assert.Equal(t, http.StatusNotFound, hidden.Code)
}

func TestRouterBannersResolveCounty(t *testing.T) {
	f := newRouterFixture()
	f.promos.banners = []models.Promo{{ID: "promo-1", Title: "Rechizite"}}

	w := f.do(http.MethodGet, "/api/promos/banners?county=cluj", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "county-cluj", f.promos.bannerCounty)

	national := f.do(http.MethodGet, "/api/promos/banners", "", "")
	require.Equal(t, http.StatusOK, national.Code)
	assert.Equal(t, "", f.promos.bannerCounty)

	unknown := f.do(http.MethodGet, "/api/promos/banners?county=nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestRouterPromoClick(t *testing.T) {
	f := newRouterFixture()

	w := f.do(http.MethodPost, "/api/promos/promo-1/click", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeEnvelope(t, w.Body.Bytes())
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "https://example.com/oferta", data["link"])

	missing := f.do(http.MethodPost, "/api/promos/other/click", "", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestRouterAdminRequiresToken(t *testing.T) {
	f := newRouterFixture()

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/admin/events", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/admin/events", "forged", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/admin/events", editorToken, "").Code)
}

func TestRouterEditorCannotUseAdminOnlyRoutes(t *testing.T) {
	f := newRouterFixture()

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/v1/admin/events/e1", editorToken, "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/v1/admin/promos/promo-1", editorToken, "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/admin/settings", editorToken, "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/v1/admin/cache/invalidate", editorToken, "").Code)
	assert.Empty(t, f.events.deleted)
	assert.Empty(t, f.promos.deleted)
	assert.Zero(t, f.settings.invalidated)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/v1/admin/events/e1", adminToken, "").Code)
	assert.Equal(t, []string{"e1"}, f.events.deleted)
}

func TestRouterAdminMe(t *testing.T) {
	f := newRouterFixture()

	w := f.do(http.MethodGet, "/api/v1/admin/me", editorToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})
	assert.Equal(t, "u-editor", data["id"])
	assert.Equal(t, string(models.RoleEditor), data["role"])
}

func TestRouterCacheInvalidation(t *testing.T) {
	f := newRouterFixture()

	w := f.do(http.MethodPost, "/api/v1/admin/cache/invalidate", adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.settings.invalidated)
	data := decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["removed_keys"])
}

func TestRouterPremiumLink(t *testing.T) {
	f := newRouterFixture()

	w := f.do(http.MethodPost, "/api/v1/admin/premium-links", adminToken, `{"subscriber":"sub-42"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})
	assert.Equal(t, "https://calendarscolar.ro/api/calendar/premium/tok-sub-42", data["url"])
	assert.Equal(t, "tok-sub-42", data["token"])

	missing := f.do(http.MethodPost, "/api/v1/admin/premium-links", adminToken, `{}`)
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestRouterHealthAndReady(t *testing.T) {
	f := newRouterFixture()

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/ready", "", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/metrics", "", "").Code)
}
