package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipe-ai/backend/internal/models"
)

// PublicProfile is what anyone may see of a user. Email and Preferences
// are only filled for the owner.
type PublicProfile struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	AvatarURL   string              `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	RecipeCount int64               `json:"recipeCount"`
	Email       string              `json:"email,omitempty"`
	Preferences *models.Preferences `json:"preferences,omitempty"`
}
