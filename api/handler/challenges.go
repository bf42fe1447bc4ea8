package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leetfriends/api/middleware"
	"leetfriends/models"
	"leetfriends/store"
)

type createChallengeRequest struct {
	OpponentHandle string    `json:"opponentHandle" binding:"required"`
	Title          string    `json:"title" binding:"required"`
	StartsAt       time.Time `json:"startsAt" binding:"required"`
	EndsAt         time.Time `json:"endsAt" binding:"required"`
}

type updateChallengeRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateChallenge returns a handler for POST /api/v1/challenges.
func CreateChallenge(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createChallengeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if !req.EndsAt.After(req.StartsAt) {
			badRequest(c, "endsAt must be after startsAt")
			return
		}

		challenge, err := st.CreateChallenge(c.Request.Context(),
			middleware.UserID(c), normalizeHandle(req.OpponentHandle), req.Title, req.StartsAt, req.EndsAt)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.OK(challenge, "challenge created"))
	}
}

// ListChallenges returns a handler for GET /api/v1/challenges.
func ListChallenges(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		challenges, err := st.ListChallengesOf(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondStoreError(c, err)
			return
		}
		if challenges == nil {
			challenges = []*models.Challenge{}
		}
		c.JSON(http.StatusOK, models.OK(challenges, "challenges retrieved"))
	}
}

// UpdateChallenge returns a handler for PATCH /api/v1/challenges/:id.
// Only the creator may move a challenge through its state machine.
func UpdateChallenge(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateChallengeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx := c.Request.Context()
		challenge, err := st.GetChallenge(ctx, c.Param("id"))
		if err != nil {
			respondStoreError(c, err)
			return
		}
		if challenge.CreatorID != middleware.UserID(c) {
			c.JSON(http.StatusForbidden, models.Fail(models.ErrCodeUnauthorized, "not your challenge"))
			return
		}

		updated, err := st.UpdateChallengeStatus(ctx, challenge.ID, req.Status)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.OK(updated, "challenge updated"))
	}
}
