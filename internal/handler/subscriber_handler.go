package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
	"github.com/noah-isme/calendar-scolar-api/pkg/response"
)

type subscriberService interface {
	Stats(ctx context.Context) (*models.SubscriptionStats, error)
	Subscriptions(ctx context.Context, countyID string) ([]models.CalendarSubscription, error)
	RecentActions(ctx context.Context, since *time.Time, limit int) ([]models.SubscriptionAction, error)
}

type premiumIssuer interface {
	PremiumToken(subscriber string) (string, time.Time, error)
}

// PremiumLinkRequest asks for a signed premium feed URL.
type PremiumLinkRequest struct {
	Subscriber string `json:"subscriber" binding:"required"`
}

// PremiumLink is a signed premium feed URL.
type PremiumLink struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SubscriberHandler exposes subscription analytics and premium link issuing.
type SubscriberHandler struct {
	service subscriberService
	premium premiumIssuer
	baseURL string
}

// NewSubscriberHandler constructs a subscriber handler. baseURL is the public origin premium links point to.
func NewSubscriberHandler(svc subscriberService, premium premiumIssuer, baseURL string) *SubscriberHandler {
	return &SubscriberHandler{service: svc, premium: premium, baseURL: strings.TrimRight(baseURL, "/")}
}

// Stats godoc
// @Summary Subscription overview
// @Tags Subscribers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/subscribers/stats [get]
func (h *SubscriberHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Subscriptions godoc
// @Summary List calendar subscriptions
// @Tags Subscribers
// @Produce json
// @Security BearerAuth
// @Param county query string false "County ID"
// @Success 200 {object} response.Envelope
// @Router /admin/subscribers [get]
func (h *SubscriberHandler) Subscriptions(c *gin.Context) {
	subs, err := h.service.Subscriptions(c.Request.Context(), c.Query("county"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

// Actions godoc
// @Summary Recent subscribe button clicks
// @Tags Subscribers
// @Produce json
// @Security BearerAuth
// @Param since query string false "Only actions after this date"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Router /admin/subscribers/actions [get]
func (h *SubscriberHandler) Actions(c *gin.Context) {
	actions, err := h.service.RecentActions(c.Request.Context(), queryDate(c, "since"), queryInt(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, actions, nil)
}

// PremiumLink godoc
// @Summary Issue a premium feed link
// @Tags Subscribers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body PremiumLinkRequest true "Subscriber"
// @Success 201 {object} response.Envelope
// @Router /admin/premium-links [post]
func (h *SubscriberHandler) PremiumLink(c *gin.Context) {
	var req PremiumLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	token, expiresAt, err := h.premium.PremiumToken(req.Subscriber)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, PremiumLink{
		URL:       PremiumFeedURL(h.baseURL, token),
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// PremiumFeedURL is the public URL of the premium feed for token.
func PremiumFeedURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/api/calendar/premium/" + token
}
