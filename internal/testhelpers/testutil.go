package testhelpers

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipe-ai/backend/internal/models"
)

// TestPassword is the plaintext password of users made by CreateTestUser.
const TestPassword = "testpassword123"

// CreateTestUser creates an active user with TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:       id,
		Name:     "Test User",
		Email:    fmt.Sprintf("testuser+%s@example.com", id.String()[:8]),
		Password: TestPassword,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// RecipeOption customizes a fixture recipe.
type RecipeOption func(*models.Recipe)

// WithInputIngredients sets the free-text ingredient list used for search.
func WithInputIngredients(ingredients ...string) RecipeOption {
	return func(r *models.Recipe) { r.InputIngredients = ingredients }
}

// WithCreatedAt pins the creation time.
func WithCreatedAt(at time.Time) RecipeOption {
	return func(r *models.Recipe) { r.CreatedAt = at }
}

// Private marks the recipe as owner-only.
func Private() RecipeOption {
	return func(r *models.Recipe) { r.IsPublic = false }
}

// CreateTestRecipe creates a valid public recipe owned by ownerID.
func CreateTestRecipe(t *testing.T, db *gorm.DB, ownerID uuid.UUID, title string, opts ...RecipeOption) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		Title:       title,
		Description: "A test recipe",
		Ingredients: []models.Ingredient{
			{Name: "ingredient1", Amount: "1", Unit: "cup"},
		},
		InputIngredients: models.StringList{"ingredient1"},
		Instructions: []models.Instruction{
			{StepNumber: 1, Description: "Cook it."},
		},
		CookingTime: models.CookingTime{Prep: 10, Cook: 20},
		Difficulty:  models.DifficultyEasy,
		Servings:    2,
		Cuisine:     "Italian",
		MealType:    models.StringList{"dinner"},
		Tags:        models.StringList{"test"},
		GeneratedBy: models.GeneratedByUser,
		CreatedBy:   &ownerID,
		IsPublic:    true,
	}
	for _, opt := range opts {
		opt(recipe)
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

// JSONMarshal is a helper function to marshal JSON for testing
func JSONMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal JSON: %v", err)
	}
	return data
}
