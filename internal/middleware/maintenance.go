package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
	"github.com/noah-isme/calendar-scolar-api/pkg/response"
)

// SettingsReader loads the site-wide settings.
type SettingsReader interface {
	Get(ctx context.Context) (*models.Settings, error)
}

// ErrMaintenance is served while maintenance mode is on.
var ErrMaintenance = appErrors.New("MAINTENANCE", http.StatusServiceUnavailable, "service under maintenance")

// Maintenance rejects public JSON requests while maintenance mode is enabled. Feeds are
// not wrapped with it, calendar clients keep syncing. Settings errors let the request through.
func Maintenance(settings SettingsReader, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		current, err := settings.Get(c.Request.Context())
		if err != nil {
			logger.Warn("maintenance check skipped", zap.Error(err))
			c.Next()
			return
		}
		if current.MaintenanceMode {
			message := ErrMaintenance.Message
			if current.MaintenanceMessage != nil && *current.MaintenanceMessage != "" {
				message = *current.MaintenanceMessage
			}
			c.Header("Retry-After", "300")
			response.Error(c, appErrors.Clone(ErrMaintenance, message))
			c.Abort()
			return
		}
		c.Next()
	}
}
