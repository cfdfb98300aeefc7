package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/logger"
	"github.com/harentsoaR/academic-scheduler/internal/middleware"
	"github.com/harentsoaR/academic-scheduler/internal/models"
	"github.com/harentsoaR/academic-scheduler/internal/utils"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,nefield=CurrentPassword"`
}

// Login exchanges email and password for a bearer token. Unknown emails and
// wrong passwords get the same answer.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Users.GetByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, apperrors.ErrNotFound) {
		respondError(c, apperrors.ErrInvalidCredentials)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		logger.Warn().Str("email", user.Email).Msg("Login: wrong password")
		respondError(c, apperrors.ErrInvalidCredentials)
		return
	}

	token, claims, err := h.Tokens.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info().Str("user", user.ID.Hex()).Str("role", user.Role).Msg("Login: token issued")

	respond(c, http.StatusOK, LoginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user})
}

// ChangePassword replaces the caller's password and clears the first-login
// and reset flags.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, user.Password) {
		respondError(c, apperrors.ErrInvalidCredentials)
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	user.Password = hashed
	user.FirstLogin = false
	user.PasswordReset = false
	if err := h.Users.Save(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Password changed successfully")
}

// Logout revokes the presented token until it would have expired anyway.
func (h *Handler) Logout(c *gin.Context) {
	jti := c.GetString(middleware.TokenIDKey)
	expiry := c.GetTime(middleware.TokenExpiryKey)
	if err := h.Revocations.Revoke(c.Request.Context(), jti, expiry); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Logged out")
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *Handler) currentUser(c *gin.Context) (*models.User, error) {
	id := mustObjectID(c.GetString(middleware.UserIDKey))
	if id.IsZero() {
		return nil, apperrors.ErrTokenInvalid
	}
	user, err := h.Users.Get(c.Request.Context(), id)
	if errors.Is(err, apperrors.ErrNotFound) {
		// account deleted after the token was issued
		return nil, apperrors.ErrTokenInvalid
	}
	return user, err
}
