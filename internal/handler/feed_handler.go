package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/calendar-scolar-api/internal/service"
	"github.com/noah-isme/calendar-scolar-api/pkg/ics"
	"github.com/noah-isme/calendar-scolar-api/pkg/response"
)

type feedService interface {
	NationalFeed(ctx context.Context) (*service.Feed, error)
	CountyFeed(ctx context.Context, slug string, client *service.ClientInfo) (*service.Feed, error)
	PremiumFeed(ctx context.Context, token string) (*service.Feed, error)
}

type countyExporter interface {
	County(ctx context.Context, slug, format string) (*service.ExportFile, error)
}

// FeedHandler serves the iCalendar feeds and county exports.
type FeedHandler struct {
	feeds   feedService
	exports countyExporter
}

// NewFeedHandler constructs a feed handler.
func NewFeedHandler(feeds feedService, exports countyExporter) *FeedHandler {
	return &FeedHandler{feeds: feeds, exports: exports}
}

// National godoc
// @Summary National calendar feed
// @Description Every active event plus calendar promos when ads are enabled
// @Tags Feeds
// @Produce text/calendar
// @Success 200 {string} string "iCalendar document"
// @Router /calendar [get]
func (h *FeedHandler) National(c *gin.Context) {
	feed, err := h.feeds.NationalFeed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, ics.ContentType, feed.Filename, feed.Body)
}

// County godoc
// @Summary County calendar feed
// @Description Feed a calendar client subscribes to. Each fetch is counted per client family.
// @Tags Feeds
// @Produce text/calendar
// @Param slug path string true "County slug"
// @Success 200 {string} string "iCalendar document"
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendar/county/{slug} [get]
func (h *FeedHandler) County(c *gin.Context) {
	client := &service.ClientInfo{UserAgent: c.GetHeader("User-Agent"), IP: c.ClientIP()}
	feed, err := h.feeds.CountyFeed(c.Request.Context(), c.Param("slug"), client)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, ics.ContentType, feed.Body)
}

// Premium godoc
// @Summary Premium calendar feed
// @Description Ad-free national feed behind a signed subscriber link
// @Tags Feeds
// @Produce text/calendar
// @Param token path string true "Signed premium token"
// @Success 200 {string} string "iCalendar document"
// @Failure 401 {object} response.Envelope
// @Router /calendar/premium/{token} [get]
func (h *FeedHandler) Premium(c *gin.Context) {
	feed, err := h.feeds.PremiumFeed(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, ics.ContentType, feed.Filename, feed.Body)
}

// CountyExport returns a handler rendering the county calendar in format.
// @Summary Export county calendar
// @Tags Feeds
// @Produce text/csv,application/pdf
// @Param slug path string true "County slug"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /calendar/county/{slug}/export.csv [get]
// @Router /calendar/county/{slug}/export.pdf [get]
func (h *FeedHandler) CountyExport(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := h.exports.County(c.Request.Context(), c.Param("slug"), format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, file.ContentType, file.Filename, file.Body)
	}
}
