package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/harentsoaR/academic-scheduler/internal/logger"
	"github.com/harentsoaR/academic-scheduler/internal/utils"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey      = "userID"
	UserRoleKey    = "userRole"
	TokenIDKey     = "tokenID"
	TokenExpiryKey = "tokenExpiry"
)

type TokenValidator interface {
	ValidateJWT(token string) (*utils.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
}

// AuthMiddleware requires a valid, unrevoked bearer token.
func AuthMiddleware(tokens TokenValidator, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			unauthorized(c, "Authorization header must be a bearer token")
			return
		}
		claims, err := tokens.ValidateJWT(tokenString)
		if err != nil {
			unauthorized(c, "Invalid token")
			return
		}

		isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			logger.Error().Err(err).Msg("Token revocation lookup failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Authentication temporarily unavailable"})
			return
		}
		if isRevoked {
			unauthorized(c, "Token has been revoked")
			return
		}

		// Set user info in the context for handlers to use
		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)
		c.Set(TokenIDKey, claims.ID)
		var expiry time.Time
		if claims.ExpiresAt != nil {
			expiry = claims.ExpiresAt.Time
		}
		c.Set(TokenExpiryKey, expiry)

		c.Next()
	}
}

// RequireRole lets the request through only for the given roles. It must be
// installed after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !lo.Contains(roles, c.GetString(UserRoleKey)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Permission denied"})
			return
		}
		c.Next()
	}
}
