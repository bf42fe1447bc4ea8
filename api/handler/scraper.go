package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leetfriends/cache"
	"leetfriends/models"
)

// Profile returns a handler for GET /api/v1/scraper/profile/:handle.
// It serves from the cache when fresh, otherwise scrapes live.
func Profile(sc ProfileScraper, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := normalizeHandle(c.Param("handle"))
		if handle == "" {
			badRequest(c, "LeetCode handle is required")
			return
		}

		if stats, hit := cc.Get(handle); hit {
			c.JSON(http.StatusOK, models.OK(stats, "profile served from cache"))
			return
		}

		stats, err := sc.ScrapeWithRetry(c.Request.Context(), handle)
		if err != nil {
			respondScrapeError(c, err)
			return
		}

		cc.Set(handle, stats)
		c.JSON(http.StatusOK, models.OK(stats, "profile scraped"))
	}
}

// Validate returns a handler for GET /api/v1/scraper/validate/:handle.
// A single unretried attempt; any failure simply reports the handle as not
// verifiable rather than an error.
func Validate(sc ProfileScraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := normalizeHandle(c.Param("handle"))
		if handle == "" {
			badRequest(c, "LeetCode handle is required")
			return
		}

		_, err := sc.ScrapeProfile(c.Request.Context(), handle)
		c.JSON(http.StatusOK, models.OK(gin.H{
			"leetcodeId": handle,
			"isValid":    err == nil,
		}, "validation complete"))
	}
}
