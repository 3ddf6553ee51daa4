package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/middleware"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

// respond writes the success envelope.
func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, &types.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondPage writes the success envelope with pagination.
func respondPage(c *gin.Context, status int, message string, data interface{}, page *types.Pagination) {
	c.JSON(status, &types.Response{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: page,
	})
}

// currentUser returns the authenticated user id. Routes using it sit behind
// middleware.AuthMiddleware, so a missing id is a wiring bug reported as 401.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		_ = c.Error(&apperror.AuthError{Message: "You are not logged in. Please log in to get access."})
		return id, false
	}
	return id, true
}
