package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/logger"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result"`
	Message string      `json:"message,omitempty"`
}

func respond(c *gin.Context, status int, result interface{}) {
	c.JSON(status, Response{Success: true, Result: result})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: true, Message: message})
}

// respondError maps application errors to HTTP statuses. Unexpected errors
// are logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, apperrors.Message(err, "Resource not found")
	case errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusConflict, apperrors.Message(err, "Resource already exists")
	case errors.Is(err, apperrors.ErrInvalidID), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, apperrors.Message(err, "Invalid request")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenRevoked):
		status, message = http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, apperrors.Message(err, "Permission denied")
	case errors.Is(err, apperrors.ErrFileTooLarge):
		status, message = http.StatusRequestEntityTooLarge, apperrors.Message(err, "File too large")
	case errors.Is(err, apperrors.ErrUnsupportedMedia):
		status, message = http.StatusUnsupportedMediaType, apperrors.Message(err, "Unsupported file type")
	}

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("method", c.Request.Method).Str("route", c.FullPath()).Msg("Request failed")
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message})
}

// bindJSON decodes and validates the body, answering 400 itself on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, apperrors.Validation(validationMessage(err)))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	return strings.Join(lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}), "; ")
}

// parseID reads an ObjectID path parameter.
func parseID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		respondError(c, apperrors.New(apperrors.ErrInvalidID, fmt.Sprintf("invalid %s", param)))
		return primitive.NilObjectID, false
	}
	return id, true
}

// objectIDs converts already validated hex ids, dropping duplicates.
func objectIDs(hexes []string) []primitive.ObjectID {
	return lo.Uniq(lo.Map(hexes, func(h string, _ int) primitive.ObjectID {
		id, _ := primitive.ObjectIDFromHex(h)
		return id
	}))
}

func mustObjectID(hex string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(hex)
	return id
}
