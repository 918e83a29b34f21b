package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	"github.com/noah-isme/calendar-scolar-api/internal/service"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
	"github.com/noah-isme/calendar-scolar-api/pkg/response"
)

type publicCountyService interface {
	List(ctx context.Context, filter models.CountyFilter) ([]models.County, error)
	GetBySlug(ctx context.Context, slug string) (*models.CountyDetail, error)
	Ref(ctx context.Context, slug string) (*models.CountyRef, error)
}

type publicPromoService interface {
	Banners(ctx context.Context, countyID string) ([]models.Promo, error)
	TrackClick(ctx context.Context, id string) (string, error)
}

type actionTracker interface {
	TrackAction(ctx context.Context, req service.TrackActionRequest, userAgent, ip string) error
}

// PublicHandler serves the unauthenticated JSON endpoints of the site.
type PublicHandler struct {
	counties publicCountyService
	promos   publicPromoService
	actions  actionTracker
}

// NewPublicHandler constructs a public handler.
func NewPublicHandler(counties publicCountyService, promos publicPromoService, actions actionTracker) *PublicHandler {
	return &PublicHandler{counties: counties, promos: promos, actions: actions}
}

// ListCounties godoc
// @Summary List active counties
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /counties [get]
func (h *PublicHandler) ListCounties(c *gin.Context) {
	active := true
	counties, err := h.counties.List(c.Request.Context(), models.CountyFilter{Active: &active})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counties, nil)
}

// GetCounty godoc
// @Summary County detail with its vacation group and periods
// @Tags Public
// @Produce json
// @Param slug path string true "County slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /counties/{slug} [get]
func (h *PublicHandler) GetCounty(c *gin.Context) {
	detail, err := h.counties.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !detail.Active {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "county not found"))
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Banners godoc
// @Summary Active banner promos
// @Description Without a county only untargeted banners are returned
// @Tags Public
// @Produce json
// @Param county query string false "County slug"
// @Success 200 {object} response.Envelope
// @Router /promos/banners [get]
func (h *PublicHandler) Banners(c *gin.Context) {
	ctx := c.Request.Context()
	countyID := ""
	if slug := c.Query("county"); slug != "" {
		county, err := h.counties.Ref(ctx, slug)
		if err != nil {
			response.Error(c, err)
			return
		}
		countyID = county.ID
	}
	promos, err := h.promos.Banners(ctx, countyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, promos, nil)
}

// PromoClick godoc
// @Summary Count a banner click
// @Tags Public
// @Produce json
// @Param id path string true "Promo ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /promos/{id}/click [post]
func (h *PublicHandler) PromoClick(c *gin.Context) {
	link, err := h.promos.TrackClick(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"link": link}, nil)
}

// TrackSubscriptionAction godoc
// @Summary Record which subscribe button a visitor used
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body service.TrackActionRequest true "Action payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /track-subscription-action [post]
func (h *PublicHandler) TrackSubscriptionAction(c *gin.Context) {
	var req service.TrackActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request"))
		return
	}
	if err := h.actions.TrackAction(c.Request.Context(), req, c.GetHeader("User-Agent"), c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true}, nil)
}
