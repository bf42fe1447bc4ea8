package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"leetfriends/api/middleware"
	"leetfriends/cache"
	"leetfriends/models"
	"leetfriends/store"
)

type addFriendRequest struct {
	LeetcodeID string `json:"leetcodeId" binding:"required"`
}

// ListFriends returns a handler for GET /api/v1/friends.
func ListFriends(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		friends, err := st.ListFriendsOf(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondStoreError(c, err)
			return
		}
		if friends == nil {
			friends = []*models.Friend{}
		}
		c.JSON(http.StatusOK, models.OK(friends, "friends retrieved"))
	}
}

// AddFriend returns a handler for POST /api/v1/friends. The handle is
// scraped synchronously (with retry) before it is linked, so a mistyped
// username fails fast with a 404 instead of creating a dead record.
func AddFriend(st *store.Store, sc ProfileScraper, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addFriendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "leetcodeId is required")
			return
		}
		handle := normalizeHandle(req.LeetcodeID)
		userID := middleware.UserID(c)
		ctx := c.Request.Context()

		linked, err := st.HasFriendLink(ctx, userID, handle)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		if linked {
			c.JSON(http.StatusConflict, models.Fail(models.ErrCodeConflict, "this LeetCode user is already in your list"))
			return
		}

		stats, err := sc.ScrapeWithRetry(ctx, handle)
		if err != nil {
			respondScrapeError(c, err)
			return
		}

		if err := st.UpsertProfile(ctx, handle, stats); err != nil {
			respondStoreError(c, err)
			return
		}
		if err := st.AddFriendLink(ctx, userID, handle); err != nil {
			respondStoreError(c, err)
			return
		}
		cc.Set(handle, stats)

		friend, err := st.GetFriend(ctx, handle)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.OK(friend, "friend added"))
	}
}

// RemoveFriend returns a handler for DELETE /api/v1/friends/:handle.
func RemoveFriend(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := normalizeHandle(c.Param("handle"))
		err := st.RemoveFriendLink(c.Request.Context(), middleware.UserID(c), handle)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.Fail(models.ErrCodeNotFound, "friend not found in your list"))
			return
		}
		if err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.OK(gin.H{"leetcodeId": handle}, "friend removed"))
	}
}

// FriendDetails returns a handler for GET /api/v1/friends/:handle.
func FriendDetails(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := normalizeHandle(c.Param("handle"))
		ctx := c.Request.Context()
		userID := middleware.UserID(c)

		linked, err := st.HasFriendLink(ctx, userID, handle)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		if !linked {
			c.JSON(http.StatusNotFound, models.Fail(models.ErrCodeNotFound, "friend not found in your list"))
			return
		}

		friend, err := st.GetFriend(ctx, handle)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.OK(friend, "friend details retrieved"))
	}
}

// RefreshFriend returns a handler for PATCH /api/v1/friends/:handle/refresh.
// It scrapes synchronously and persists the outcome either way.
func RefreshFriend(st *store.Store, sc ProfileScraper, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := normalizeHandle(c.Param("handle"))
		ctx := c.Request.Context()
		userID := middleware.UserID(c)

		linked, err := st.HasFriendLink(ctx, userID, handle)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		if !linked {
			c.JSON(http.StatusNotFound, models.Fail(models.ErrCodeNotFound, "friend not found in your list"))
			return
		}

		stats, err := sc.ScrapeWithRetry(ctx, handle)
		if err != nil {
			msg := "profile not found"
			if !errors.Is(err, models.ErrProfileNotFound) {
				msg = err.Error()
			}
			if serr := st.MarkScrapeFailed(ctx, handle, msg); serr != nil {
				slog.Error("failed to record scrape failure", "handle", handle, "error", serr)
			}
			respondScrapeError(c, err)
			return
		}

		if err := st.UpsertProfile(ctx, handle, stats); err != nil {
			respondStoreError(c, err)
			return
		}
		cc.Set(handle, stats)

		friend, err := st.GetFriend(ctx, handle)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.OK(friend, "friend data updated"))
	}
}

// BulkUpdate returns a handler for POST /api/v1/friends/bulk-update. The
// pass runs in the background; the response only acknowledges the trigger.
func BulkUpdate(sw BulkRefresher) gin.HandlerFunc {
	return func(c *gin.Context) {
		go func() {
			// Detached from the request: the pass outlives the HTTP call.
			if _, err := sw.RunOnce(context.Background()); err != nil {
				slog.Warn("bulk update pass not started", "error", err)
			}
		}()
		c.JSON(http.StatusAccepted, models.OK(nil, "bulk refresh started"))
	}
}

// Leaderboard returns a handler for GET /api/v1/friends/leaderboard.
// Supported sort keys: totalSolved (default), contestRating, streak,
// ranking.
func Leaderboard(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		friends, err := st.ListFriendsOf(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondStoreError(c, err)
			return
		}

		scored := make([]*models.Friend, 0, len(friends))
		for _, f := range friends {
			if f.Stats != nil && f.ScrapeStatus == models.ScrapeStatusSuccess {
				scored = append(scored, f)
			}
		}

		sortBy := c.DefaultQuery("sortBy", "totalSolved")
		sort.SliceStable(scored, func(i, j int) bool {
			a, b := scored[i].Stats, scored[j].Stats
			switch sortBy {
			case "contestRating":
				return a.ContestRating > b.ContestRating
			case "streak":
				return a.Streak > b.Streak
			case "ranking":
				// Lower global rank is better; unranked (0) sorts last.
				return rankKey(a.Ranking) < rankKey(b.Ranking)
			default:
				return a.TotalSolved > b.TotalSolved
			}
		})

		type rankedFriend struct {
			*models.Friend
			Rank int `json:"rank"`
		}
		ranked := make([]rankedFriend, len(scored))
		for i, f := range scored {
			ranked[i] = rankedFriend{Friend: f, Rank: i + 1}
		}

		c.JSON(http.StatusOK, models.OK(gin.H{
			"leaderboard": ranked,
			"sortBy":      sortBy,
			"generatedAt": time.Now().UTC(),
		}, "leaderboard retrieved"))
	}
}

func rankKey(ranking int) int {
	if ranking == 0 {
		return int(^uint(0) >> 1) // unranked sorts after everyone
	}
	return ranking
}
