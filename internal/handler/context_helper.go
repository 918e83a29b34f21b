package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/calendar-scolar-api/internal/middleware"
	"github.com/noah-isme/calendar-scolar-api/internal/models"
	"github.com/noah-isme/calendar-scolar-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentUser(c)
}

func queryBool(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &val
}

// queryDate accepts RFC 3339 timestamps or plain dates.
func queryDate(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}

func queryPage(c *gin.Context) (int, int) {
	return queryInt(c, "page", 1), queryInt(c, "limit", 50)
}

// Me godoc
// @Summary Claims of the calling administrator
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/me [get]
func Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": claims.UserID, "email": claims.Email, "role": claims.Role}, nil)
}
