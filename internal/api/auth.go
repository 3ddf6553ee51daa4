package api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/middleware"
	"github.com/pageza/recipe-ai/backend/internal/service"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

var errAvatarStorage = errors.New("avatar storage is not configured")

// AuthHandler serves account endpoints.
type AuthHandler struct {
	authService service.IAuthService
	avatars     service.IAvatarStore
	limiter     gin.HandlerFunc
}

// NewAuthHandler builds the handler. avatars may be nil when storage is not
// configured; limiter may be nil to disable the auth rate limit.
func NewAuthHandler(authService service.IAuthService, avatars service.IAvatarStore, limiter gin.HandlerFunc) *AuthHandler {
	if limiter == nil {
		limiter = func(c *gin.Context) { c.Next() }
	}
	return &AuthHandler{
		authService: authService,
		avatars:     avatars,
		limiter:     limiter,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.limiter, h.Register)
		auth.POST("/login", h.limiter, h.Login)

		protected := auth.Group("", middleware.AuthMiddleware(h.authService))
		protected.GET("/me", h.Me)
		protected.PUT("/profile", h.UpdateProfile)
		protected.PUT("/change-password", h.ChangePassword)
		protected.PUT("/avatar", h.UploadAvatar)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", &types.AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Login successful", &types.AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	me, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "User retrieved successfully", me)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Profile updated successfully", user)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	token, err := h.authService.ChangePassword(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Password changed successfully", gin.H{"token": token})
}

// UploadAvatar accepts one image in the multipart field "avatar". The
// content type is sniffed from the bytes, not taken from the client.
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.avatars == nil {
		_ = c.Error(&apperror.NetworkError{Cause: errAvatarStorage})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			_ = c.Error(err)
			return
		}
		_ = c.Error(&apperror.UploadError{Field: "avatar", Message: "Expected a multipart form with an avatar file"})
		return
	}
	files := form.File["avatar"]
	switch {
	case len(files) == 0:
		_ = c.Error(&apperror.UploadError{Field: "avatar", Message: "No file uploaded"})
		return
	case len(files) > 1:
		_ = c.Error(&apperror.UploadError{Field: "avatar", Message: "Only one file may be uploaded"})
		return
	}

	fh := files[0]
	file, err := fh.Open()
	if err != nil {
		_ = c.Error(errors.Wrap(err, "failed to open upload"))
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = c.Error(errors.Wrap(err, "failed to read upload"))
		return
	}
	contentType := http.DetectContentType(head[:n])
	if err := service.ValidateAvatar(contentType, fh.Size); err != nil {
		_ = c.Error(err)
		return
	}
	body := io.MultiReader(bytes.NewReader(head[:n]), file)

	url, err := h.avatars.Upload(c.Request.Context(), userID, contentType, body, fh.Size)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.authService.SetAvatar(c.Request.Context(), userID, url)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Avatar updated successfully", user)
}
