package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/service"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

// MockRecipeService is a mock implementation of the RecipeService interface
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, userID uuid.UUID, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) SaveGenerated(ctx context.Context, recipe *models.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, id string, viewerID *uuid.UUID) (*types.RecipeDetail, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeDetail), args.Error(1)
}

func (m *MockRecipeService) ListRecipes(ctx context.Context, q *types.ListRecipesQuery) ([]models.Recipe, *types.Pagination, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]models.Recipe), args.Get(1).(*types.Pagination), args.Error(2)
}

func (m *MockRecipeService) SearchByIngredients(ctx context.Context, req *types.SearchByIngredientsRequest) (*types.SearchResult, *types.Pagination, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*types.SearchResult), args.Get(1).(*types.Pagination), args.Error(2)
}

func (m *MockRecipeService) SaveRecipe(ctx context.Context, userID uuid.UUID, recipeID string) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) UnsaveRecipe(ctx context.Context, userID uuid.UUID, recipeID string) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) SavedRecipes(ctx context.Context, userID uuid.UUID, q *types.PageQuery) ([]models.Recipe, *types.Pagination, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]models.Recipe), args.Get(1).(*types.Pagination), args.Error(2)
}

func (m *MockRecipeService) RateRecipe(ctx context.Context, userID uuid.UUID, recipeID string, req *types.RateRecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, userID, recipeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

// MockGenerationService is a mock implementation of the GenerationService interface
type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Generate(ctx context.Context, req *types.GenerateRecipeRequest, prefs *models.Preferences) (*service.GenerationResult, error) {
	args := m.Called(ctx, req, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerationResult), args.Error(1)
}

func (m *MockGenerationService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUserService is a mock implementation of the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, id string, viewerID *uuid.UUID) (*types.PublicProfile, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PublicProfile), args.Error(1)
}
