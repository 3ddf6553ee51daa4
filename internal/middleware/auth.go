package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

const userIDKey = "user_id"

var errNotLoggedIn = &apperror.AuthError{Message: "You are not logged in. Please log in to get access."}

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware requires a valid token and stores the user id in the
// context. The user record itself is not loaded.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWithError(c, errNotLoggedIn)
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth attaches the user id when a valid token is present and
// otherwise continues anonymously.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := validator.ValidateToken(token); err == nil {
				c.Set(userIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user id, if any.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// OptionalUserID is GetUserID as a pointer, nil for anonymous callers.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	if id, ok := GetUserID(c); ok {
		return &id
	}
	return nil
}
