// Package handler implements the REST endpoints. Handlers convert scraper
// and store failures into the API envelope: "profile not found" becomes a
// 404 telling the user to check the username, classified scrape faults
// become 5xx "temporarily unable to reach LeetCode" responses.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leetfriends/models"
	"leetfriends/store"
)

// normalizeHandle canonicalizes a LeetCode handle the way the rest of the
// system stores it.
func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// respondScrapeError writes the envelope for a failed scrape.
func respondScrapeError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound,
			models.Fail(models.ErrCodeNotFound, "LeetCode profile not found, please check the username"))
		return
	}

	scrapeErr := models.AsScrapeError(err)
	c.JSON(scrapeStatus(scrapeErr), models.APIResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
	})
}

// scrapeStatus translates scraper error codes to HTTP status codes.
func scrapeStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeConnection, models.ErrCodeSessionReset,
		models.ErrCodeHTTP, models.ErrCodeParse, models.ErrCodeUpstream:
		return http.StatusBadGateway // 502
	case models.ErrCodeLaunch:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}

// respondStoreError writes the envelope for a failed store operation.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, models.Fail(models.ErrCodeNotFound, "record not found"))
	case errors.Is(err, store.ErrEmailTaken):
		c.JSON(http.StatusConflict, models.Fail(models.ErrCodeConflict, "email already registered"))
	case errors.Is(err, store.ErrBadTransition):
		c.JSON(http.StatusConflict, models.Fail(models.ErrCodeConflict, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, models.Fail(models.ErrCodeInternal, "internal error"))
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.Fail(models.ErrCodeInvalidInput, message))
}
