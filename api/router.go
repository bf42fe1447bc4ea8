// Package api wires the REST surface on top of the scraper, store, cache,
// and sweep components.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"leetfriends/api/handler"
	"leetfriends/api/middleware"
	"leetfriends/cache"
	"leetfriends/config"
	"leetfriends/store"
)

// Deps carries everything the router needs.
type Deps struct {
	Session   handler.SessionInfo
	Scraper   handler.ProfileScraper
	Store     *store.Store
	Cache     *cache.Cache
	Sweeper   handler.BulkRefresher
	Config    *config.Config
	StartTime time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth → RateLimit
//
// Health and auth endpoints sit outside the session check so monitoring
// probes and sign-in always work.
func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(d.Config.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(d.Session, d.StartTime))
	v1.POST("/auth/register", handler.Register(d.Store, d.Config.Auth))
	v1.POST("/auth/login", handler.Login(d.Store, d.Config.Auth))

	protected := v1.Group("")
	protected.Use(middleware.Auth(d.Config.Auth.Secret))
	protected.Use(middleware.RateLimit(d.Config.RateLimit))

	// Scraper
	protected.GET("/scraper/profile/:handle", handler.Profile(d.Scraper, d.Cache))
	protected.GET("/scraper/validate/:handle", handler.Validate(d.Scraper))

	// Friends (static routes before parameterized ones)
	protected.GET("/friends/leaderboard", handler.Leaderboard(d.Store))
	protected.POST("/friends/bulk-update", handler.BulkUpdate(d.Sweeper))
	protected.GET("/friends", handler.ListFriends(d.Store))
	protected.POST("/friends", handler.AddFriend(d.Store, d.Scraper, d.Cache))
	protected.GET("/friends/:handle", handler.FriendDetails(d.Store))
	protected.DELETE("/friends/:handle", handler.RemoveFriend(d.Store))
	protected.PATCH("/friends/:handle/refresh", handler.RefreshFriend(d.Store, d.Scraper, d.Cache))

	// Dashboard
	protected.GET("/dashboard/stats", handler.DashboardStats(d.Store))

	// Challenges
	protected.POST("/challenges", handler.CreateChallenge(d.Store))
	protected.GET("/challenges", handler.ListChallenges(d.Store))
	protected.PATCH("/challenges/:id", handler.UpdateChallenge(d.Store))

	return r
}
