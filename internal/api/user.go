package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-ai/backend/internal/middleware"
	"github.com/pageza/recipe-ai/backend/internal/service"
)

// UserHandler serves public profiles.
type UserHandler struct {
	userService service.IUserService
	authService service.IAuthService
}

func NewUserHandler(userService service.IUserService, authService service.IAuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.GET("/:id", middleware.OptionalAuth(h.authService), h.GetProfile)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), c.Param("id"), middleware.OptionalUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "User retrieved successfully", profile)
}
