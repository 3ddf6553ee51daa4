package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(userID uuid.UUID) (string, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Me(ctx context.Context, userID uuid.UUID) (*types.MeResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *types.ChangePasswordRequest) (string, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, url string) (*models.User, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, userID uuid.UUID, req *types.CreateRecipeRequest) (*models.Recipe, error)
	SaveGenerated(ctx context.Context, recipe *models.Recipe) error
	GetRecipe(ctx context.Context, id string, viewerID *uuid.UUID) (*types.RecipeDetail, error)
	ListRecipes(ctx context.Context, q *types.ListRecipesQuery) ([]models.Recipe, *types.Pagination, error)
	SearchByIngredients(ctx context.Context, req *types.SearchByIngredientsRequest) (*types.SearchResult, *types.Pagination, error)
	SaveRecipe(ctx context.Context, userID uuid.UUID, recipeID string) error
	UnsaveRecipe(ctx context.Context, userID uuid.UUID, recipeID string) error
	SavedRecipes(ctx context.Context, userID uuid.UUID, q *types.PageQuery) ([]models.Recipe, *types.Pagination, error)
	RateRecipe(ctx context.Context, userID uuid.UUID, recipeID string, req *types.RateRecipeRequest) (*models.Recipe, error)
}

// IUserService defines the interface for public user lookups
type IUserService interface {
	GetProfile(ctx context.Context, id string, viewerID *uuid.UUID) (*types.PublicProfile, error)
}

// IGenerationService turns a generation request into a recipe.
type IGenerationService interface {
	Generate(ctx context.Context, req *types.GenerateRecipeRequest, prefs *models.Preferences) (*GenerationResult, error)
	Ping(ctx context.Context) error
}

// IAvatarStore persists avatar images and returns their public URL.
type IAvatarStore interface {
	Upload(ctx context.Context, userID uuid.UUID, contentType string, body io.Reader, size int64) (string, error)
}
