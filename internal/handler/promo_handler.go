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

type promoService interface {
	List(ctx context.Context, filter models.PromoFilter) ([]models.Promo, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Promo, error)
	Create(ctx context.Context, req service.PromoRequest) (*models.Promo, error)
	Update(ctx context.Context, id string, req service.PromoRequest) (*models.Promo, error)
	ToggleActive(ctx context.Context, id string) (*models.Promo, error)
	Delete(ctx context.Context, id string) error
}

// PromoHandler exposes admin endpoints for promotions.
type PromoHandler struct {
	service promoService
}

// NewPromoHandler constructs a promo handler.
func NewPromoHandler(svc promoService) *PromoHandler {
	return &PromoHandler{service: svc}
}

// List godoc
// @Summary List promos
// @Tags Promos
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Filter by active flag"
// @Param banner query bool false "Filter banner promos"
// @Param calendar query bool false "Filter calendar promos"
// @Param search query string false "Title search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/promos [get]
func (h *PromoHandler) List(c *gin.Context) {
	filter := models.PromoFilter{
		Active:   queryBool(c, "active"),
		Banner:   queryBool(c, "banner"),
		Calendar: queryBool(c, "calendar"),
		Search:   c.Query("search"),
	}
	filter.Page, filter.PageSize = queryPage(c)

	promos, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, promos, pagination)
}

// Get godoc
// @Summary Get promo
// @Tags Promos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Promo ID"
// @Success 200 {object} response.Envelope
// @Router /admin/promos/{id} [get]
func (h *PromoHandler) Get(c *gin.Context) {
	promo, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, promo, nil)
}

// Create godoc
// @Summary Create promo
// @Tags Promos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.PromoRequest true "Promo payload"
// @Success 201 {object} response.Envelope
// @Router /admin/promos [post]
func (h *PromoHandler) Create(c *gin.Context) {
	var req service.PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	promo, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, promo)
}

// Update godoc
// @Summary Update promo
// @Tags Promos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Promo ID"
// @Param payload body service.PromoRequest true "Promo payload"
// @Success 200 {object} response.Envelope
// @Router /admin/promos/{id} [put]
func (h *PromoHandler) Update(c *gin.Context) {
	var req service.PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	promo, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, promo, nil)
}

// Toggle godoc
// @Summary Toggle promo
// @Tags Promos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Promo ID"
// @Success 200 {object} response.Envelope
// @Router /admin/promos/{id}/toggle [patch]
func (h *PromoHandler) Toggle(c *gin.Context) {
	promo, err := h.service.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, promo, nil)
}

// Delete godoc
// @Summary Delete promo
// @Tags Promos
// @Security BearerAuth
// @Param id path string true "Promo ID"
// @Success 204 {string} string ""
// @Router /admin/promos/{id} [delete]
func (h *PromoHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
