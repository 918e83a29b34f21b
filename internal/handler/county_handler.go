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

type countyAdminService interface {
	List(ctx context.Context, filter models.CountyFilter) ([]models.County, error)
	GetBySlug(ctx context.Context, slug string) (*models.CountyDetail, error)
	Update(ctx context.Context, id string, req service.UpdateCountyRequest) (*models.County, error)
	ToggleActive(ctx context.Context, id string) (*models.County, error)
	ListGroups(ctx context.Context) ([]models.VacationGroupSummary, error)
	GetGroup(ctx context.Context, id string) (*models.VacationGroup, error)
	UpdateGroup(ctx context.Context, id string, req service.UpdateGroupRequest) (*models.VacationGroup, error)
	GroupPeriods(ctx context.Context, groupID, schoolYear string) ([]models.VacationPeriod, error)
	CreatePeriod(ctx context.Context, req service.PeriodRequest) (*models.VacationPeriod, error)
	UpdatePeriod(ctx context.Context, id string, req service.PeriodRequest) (*models.VacationPeriod, error)
	DeletePeriod(ctx context.Context, id string) error
}

// CountyHandler exposes admin endpoints for counties, vacation groups and their periods.
type CountyHandler struct {
	service countyAdminService
}

// NewCountyHandler constructs a county handler.
func NewCountyHandler(svc countyAdminService) *CountyHandler {
	return &CountyHandler{service: svc}
}

// List godoc
// @Summary List counties
// @Tags Counties
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Filter by active flag"
// @Param group query string false "Vacation group ID"
// @Param search query string false "Name search"
// @Success 200 {object} response.Envelope
// @Router /admin/counties [get]
func (h *CountyHandler) List(c *gin.Context) {
	filter := models.CountyFilter{
		Active:  queryBool(c, "active"),
		GroupID: c.Query("group"),
		Search:  c.Query("search"),
	}
	counties, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counties, nil)
}

// Get godoc
// @Summary Get county with group and periods, active or not
// @Tags Counties
// @Produce json
// @Security BearerAuth
// @Param slug path string true "County slug"
// @Success 200 {object} response.Envelope
// @Router /admin/counties/{slug} [get]
func (h *CountyHandler) Get(c *gin.Context) {
	detail, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update county
// @Tags Counties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "County ID"
// @Param payload body service.UpdateCountyRequest true "County payload"
// @Success 200 {object} response.Envelope
// @Router /admin/counties/{id} [put]
func (h *CountyHandler) Update(c *gin.Context) {
	var req service.UpdateCountyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	county, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, county, nil)
}

// Toggle godoc
// @Summary Toggle county
// @Tags Counties
// @Produce json
// @Security BearerAuth
// @Param id path string true "County ID"
// @Success 200 {object} response.Envelope
// @Router /admin/counties/{id}/toggle [patch]
func (h *CountyHandler) Toggle(c *gin.Context) {
	county, err := h.service.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, county, nil)
}

// ListGroups godoc
// @Summary List vacation groups with county counts
// @Tags Vacation groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/groups [get]
func (h *CountyHandler) ListGroups(c *gin.Context) {
	groups, err := h.service.ListGroups(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// GetGroup godoc
// @Summary Get vacation group
// @Tags Vacation groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /admin/groups/{id} [get]
func (h *CountyHandler) GetGroup(c *gin.Context) {
	group, err := h.service.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// UpdateGroup godoc
// @Summary Update vacation group
// @Tags Vacation groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param payload body service.UpdateGroupRequest true "Group payload"
// @Success 200 {object} response.Envelope
// @Router /admin/groups/{id} [put]
func (h *CountyHandler) UpdateGroup(c *gin.Context) {
	var req service.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	group, err := h.service.UpdateGroup(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// GroupPeriods godoc
// @Summary List the vacation periods of a group
// @Tags Vacation groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param school_year query string false "School year, e.g. 2025-2026"
// @Success 200 {object} response.Envelope
// @Router /admin/groups/{id}/periods [get]
func (h *CountyHandler) GroupPeriods(c *gin.Context) {
	periods, err := h.service.GroupPeriods(c.Request.Context(), c.Param("id"), c.Query("school_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// CreatePeriod godoc
// @Summary Create vacation period
// @Tags Vacation periods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.PeriodRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Router /admin/periods [post]
func (h *CountyHandler) CreatePeriod(c *gin.Context) {
	var req service.PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.service.CreatePeriod(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// UpdatePeriod godoc
// @Summary Update vacation period
// @Tags Vacation periods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Period ID"
// @Param payload body service.PeriodRequest true "Period payload"
// @Success 200 {object} response.Envelope
// @Router /admin/periods/{id} [put]
func (h *CountyHandler) UpdatePeriod(c *gin.Context) {
	var req service.PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.service.UpdatePeriod(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// DeletePeriod godoc
// @Summary Delete vacation period
// @Tags Vacation periods
// @Security BearerAuth
// @Param id path string true "Period ID"
// @Success 204 {string} string ""
// @Router /admin/periods/{id} [delete]
func (h *CountyHandler) DeletePeriod(c *gin.Context) {
	if err := h.service.DeletePeriod(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
