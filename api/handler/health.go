package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leetfriends/models"
	"leetfriends/scraper"
)

// SessionInfo exposes the browser session state for health reporting.
type SessionInfo interface {
	State() scraper.SessionState
}

// Health returns a handler for GET /api/v1/health.
//
// The service is degraded (not down) while the browser session is
// disconnected: the next scrape relaunches it.
func Health(session SessionInfo, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := session.State()

		status := "healthy"
		if state == scraper.StateDisconnected {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       status,
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			BrowserState: state.String(),
			Version:      "0.1.0",
		})
	}
}
