package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leetfriends/api/middleware"
	"leetfriends/config"
	"leetfriends/models"
	"leetfriends/store"
)

type registerRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required"`
	LeetcodeID string `json:"leetcodeId"`
}

type loginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register returns a handler for POST /api/v1/auth/register.
func Register(st *store.Store, cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		user, err := st.CreateUser(c.Request.Context(), req.Email, strings.TrimSpace(req.Name), normalizeHandle(req.LeetcodeID))
		if err != nil {
			respondStoreError(c, err)
			return
		}

		token, err := middleware.IssueToken(cfg.Secret, cfg.TokenTTL, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.Fail(models.ErrCodeInternal, "failed to issue session token"))
			return
		}

		c.JSON(http.StatusCreated, models.OK(sessionResponse{Token: token, User: user}, "account created"))
	}
}

// Login returns a handler for POST /api/v1/auth/login.
//
// Identity verification happens upstream of this service (the deployment
// sits behind Google sign-in); this endpoint exchanges a verified email for
// a session token.
func Login(st *store.Store, cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		user, err := st.GetUserByEmail(c.Request.Context(), req.Email)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.Fail(models.ErrCodeNotFound, "no account for this email"))
			return
		}
		if err != nil {
			respondStoreError(c, err)
			return
		}

		token, err := middleware.IssueToken(cfg.Secret, cfg.TokenTTL, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.Fail(models.ErrCodeInternal, "failed to issue session token"))
			return
		}

		c.JSON(http.StatusOK, models.OK(sessionResponse{Token: token, User: user}, "logged in"))
	}
}
