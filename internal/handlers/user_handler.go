package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/logger"
	"github.com/harentsoaR/academic-scheduler/internal/middleware"
	"github.com/harentsoaR/academic-scheduler/internal/models"
	"github.com/harentsoaR/academic-scheduler/internal/utils"
)

// multipartOverhead is allowed on top of the file size limit for headers and
// boundaries of the multipart body.
const multipartOverhead = 64 << 10

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=Student Lecturer Admin"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitnil,notblank"`
	Email *string `json:"email" binding:"omitempty,email"`
	Role  *string `json:"role" binding:"omitempty,oneof=Student Lecturer Admin"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	role := c.Query("role")
	if role != "" && role != models.RoleStudent && role != models.RoleLecturer && role != models.RoleAdmin {
		respondError(c, apperrors.Validation("unknown role "+role))
		return
	}
	users, err := h.Users.List(c.Request.Context(), models.UserFilter{Role: role})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

// ListStudents serves /api/student/get/all.
func (h *Handler) ListStudents(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), models.UserFilter{Role: models.RoleStudent})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// CreateUser registers an account with an initial password the user must
// change on first login.
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	user := &models.User{
		Name:       strings.TrimSpace(req.Name),
		Email:      normalizeEmail(req.Email),
		Password:   hashed,
		Role:       req.Role,
		FirstLogin: true,
	}
	if err := h.Users.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	logger.Info().Str("user", user.ID.Hex()).Str("role", user.Role).Msg("User created")
	respond(c, http.StatusCreated, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == nil && req.Email == nil && req.Role == nil {
		respondError(c, apperrors.Validation("No fields to update"))
		return
	}

	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if err := h.Users.Save(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if id.Hex() == c.GetString(middleware.UserIDKey) {
		respondError(c, apperrors.Validation("You cannot delete your own account"))
		return
	}

	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.removePicture(user.ProfilePicture)
	respondMessage(c, http.StatusOK, "User deleted successfully")
}

// ResetPassword lets an admin set a temporary password. The user is flagged
// so the client can force a change.
func (h *Handler) ResetPassword(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	user.Password = hashed
	user.PasswordReset = true
	if err := h.Users.Save(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Password reset successfully")
}

// UploadProfilePicture stores the multipart "file" field as the user's
// picture. Users may change their own picture; admins anyone's.
func (h *Handler) UploadProfilePicture(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if id.Hex() != c.GetString(middleware.UserIDKey) && c.GetString(middleware.UserRoleKey) != models.RoleAdmin {
		respondError(c, apperrors.Forbidden("You can only change your own profile picture"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Uploads.MaxBytes()+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, apperrors.New(apperrors.ErrFileTooLarge, "File too large"))
			return
		}
		respondError(c, apperrors.Validation("multipart field \"file\" is required"))
		return
	}

	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	public, err := h.Uploads.SaveImage(fh, "profiles")
	if err != nil {
		respondError(c, err)
		return
	}

	previous := user.ProfilePicture
	user.ProfilePicture = public
	if err := h.Users.Save(c.Request.Context(), user); err != nil {
		h.removePicture(public)
		respondError(c, err)
		return
	}
	h.removePicture(previous)
	respond(c, http.StatusOK, user)
}

func (h *Handler) removePicture(public string) {
	if public == "" {
		return
	}
	if err := h.Uploads.Delete(public); err != nil {
		logger.Warn().Err(err).Str("path", public).Msg("Could not remove profile picture")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
