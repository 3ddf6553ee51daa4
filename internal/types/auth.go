package types

import "github.com/pageza/recipe-ai/backend/internal/models"

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name        string              `json:"name" binding:"required,min=2,max=50"`
	Email       string              `json:"email" binding:"required,email"`
	Password    string              `json:"password" binding:"required,min=6,max=72"`
	Preferences *models.Preferences `json:"preferences"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest only touches the fields that are present.
type UpdateProfileRequest struct {
	Name        *string             `json:"name" binding:"omitempty,min=2,max=50"`
	Preferences *models.Preferences `json:"preferences"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// MeResponse is the authenticated user with saved recipe ids, most recent
// first.
type MeResponse struct {
	*models.User
	SavedRecipes []string `json:"savedRecipes"`
}
