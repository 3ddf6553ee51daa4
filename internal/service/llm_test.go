package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/service"
	"github.com/pageza/recipe-ai/backend/internal/testhelpers"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

const validReply = "```json\n" + `{
  "title": "Chicken Fried Rice",
  "description": "Quick weeknight rice.",
  "ingredients": [
    {"name": "chicken", "amount": 2, "unit": "cups"},
    {"name": "rice", "amount": "3", "unit": "cups"}
  ],
  "instructions": [
    {"stepNumber": 1, "description": "Cook the rice.", "duration": "15 minutes"},
    {"description": "Fry everything together."}
  ],
  "cookingTime": {"prep": 10, "cook": "20", "total": 99},
  "difficulty": "Easy",
  "cuisine": "Chinese",
  "mealType": ["dinner", "brunch"],
  "dietaryInfo": {"isDairyFree": true},
  "nutritionalInfo": {"calories": 450, "protein": 30, "carbs": 50, "fat": 12, "fiber": 2},
  "tags": ["quick"]
}` + "\n```"

func generateRequest() *types.GenerateRecipeRequest {
	return &types.GenerateRecipeRequest{
		Ingredients: []string{"chicken", "rice"},
		Servings:    2,
		MealType:    "lunch",
	}
}

func TestParseRecipeResponse(t *testing.T) {
	t.Run("parses fenced JSON", func(t *testing.T) {
		recipe, status := service.ParseRecipeResponse(validReply, generateRequest())

		assert.Equal(t, types.GenerationParsed, status)
		assert.Equal(t, "Chicken Fried Rice", recipe.Title)
		require.Len(t, recipe.Ingredients, 2)
		assert.Equal(t, "2", recipe.Ingredients[0].Amount)
		assert.Equal(t, "3", recipe.Ingredients[1].Amount)
		require.Len(t, recipe.Instructions, 2)
		require.NotNil(t, recipe.Instructions[0].Duration)
		assert.Equal(t, 15, *recipe.Instructions[0].Duration)
		assert.Equal(t, 2, recipe.Instructions[1].StepNumber)
		assert.Equal(t, 30, recipe.CookingTime.Total)
		assert.Equal(t, models.DifficultyEasy, recipe.Difficulty)
		assert.Equal(t, models.StringList{"dinner"}, recipe.MealType)
		assert.Equal(t, 2, recipe.Servings)
		assert.Equal(t, models.StringList{"chicken", "rice"}, recipe.InputIngredients)
		assert.Equal(t, models.GeneratedByAI, recipe.GeneratedBy)
		assert.True(t, recipe.DietaryInfo.IsDairyFree)
		require.NotNil(t, recipe.NutritionalInfo)
		assert.Equal(t, 450.0, recipe.NutritionalInfo.Calories)
		assert.NoError(t, recipe.Validate())
	})

	t.Run("extracts object from surrounding prose", func(t *testing.T) {
		reply := `Sure! Here it is: {"title": "Toast", "ingredients": ["bread"], "instructions": ["Toast the bread."]} Enjoy.`
		recipe, status := service.ParseRecipeResponse(reply, generateRequest())

		assert.Equal(t, types.GenerationParsed, status)
		assert.Equal(t, "bread", recipe.Ingredients[0].Name)
		assert.Equal(t, "Toast the bread.", recipe.Instructions[0].Description)
		assert.Equal(t, models.StringList{"lunch"}, recipe.MealType)
		assert.Equal(t, models.DifficultyMedium, recipe.Difficulty)
		assert.Equal(t, "A recipe made with chicken, rice.", recipe.Description)
		assert.Equal(t, models.StringList{"ai-generated"}, recipe.Tags)
	})

	fallbackCases := map[string]string{
		"not JSON":              "I could not think of anything, sorry.",
		"missing title":         `{"ingredients": ["a"], "instructions": ["b"]}`,
		"ingredients as object": `{"title": "x", "ingredients": {"a": 1}, "instructions": ["b"]}`,
		"instructions missing":  `{"title": "x", "ingredients": ["a"]}`,
		"empty ingredients":     `{"title": "x", "ingredients": [], "instructions": ["b"]}`,
	}
	for name, reply := range fallbackCases {
		t.Run("falls back when "+name, func(t *testing.T) {
			recipe, status := service.ParseRecipeResponse(reply, generateRequest())

			assert.Equal(t, types.GenerationFallback, status)
			require.Len(t, recipe.Instructions, 1)
			assert.Equal(t, reply, recipe.Instructions[0].Description)
			assert.Equal(t, "Recipe with chicken, rice", recipe.Title)
			assert.Len(t, recipe.Ingredients, 2)
			assert.NoError(t, recipe.Validate())
		})
	}
}

func TestParseRecipeResponse_DietaryRestrictions(t *testing.T) {
	req := generateRequest()
	req.DietaryRestrictions = []string{"Vegan", "gluten-free"}

	recipe, _ := service.ParseRecipeResponse("nope", req)

	assert.True(t, recipe.DietaryInfo.IsVegan)
	assert.True(t, recipe.DietaryInfo.IsVegetarian)
	assert.True(t, recipe.DietaryInfo.IsGlutenFree)
	assert.False(t, recipe.DietaryInfo.IsNutFree)
}

func TestBuildRecipePrompt(t *testing.T) {
	req := &types.GenerateRecipeRequest{
		Ingredients:         []string{"chicken", "rice"},
		Servings:            4,
		MealType:            "dinner",
		Difficulty:          "hard",
		DietaryRestrictions: []string{"gluten-free"},
		Cuisine:             "Thai",
		MaxCookingTime:      45,
	}
	prompt := service.BuildRecipePrompt(req, &models.Preferences{DislikedIngredients: []string{"cilantro"}})

	for _, want := range []string{
		"chicken, rice",
		"Servings: 4",
		"Meal type: dinner",
		"Difficulty: hard",
		"Dietary restrictions: gluten-free",
		"Cuisine: Thai",
		"45 minutes",
		"Avoid these ingredients: cilantro",
		`"instructions"`,
	} {
		assert.Contains(t, prompt, want)
	}

	minimal := service.BuildRecipePrompt(&types.GenerateRecipeRequest{Ingredients: []string{"egg"}, Servings: 1}, nil)
	assert.NotContains(t, minimal, "Cuisine:")
	assert.NotContains(t, minimal, "Maximum total cooking time")
}

func TestGenerationService_Generate(t *testing.T) {
	log := testhelpers.Logger()

	t.Run("uses preferences when the request omits them", func(t *testing.T) {
		completer := new(mockCompleter)
		completer.On("Complete", mock.Anything, mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return assertContainsAll(prompt, "Servings: 6", "Dietary restrictions: vegetarian")
		})).Return(validReply, nil)

		svc := service.NewGenerationService(completer, 4, 0, log)
		req := &types.GenerateRecipeRequest{Ingredients: []string{"chicken", "rice"}}
		result, err := svc.Generate(context.Background(), req, &models.Preferences{
			DefaultServings:     6,
			DietaryRestrictions: []string{"vegetarian"},
		})

		require.NoError(t, err)
		assert.Equal(t, types.GenerationParsed, result.Status)
		assert.Equal(t, validReply, result.RawText)
		completer.AssertExpectations(t)
	})

	t.Run("fallback keeps raw text", func(t *testing.T) {
		completer := new(mockCompleter)
		completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("just cook it", nil)

		svc := service.NewGenerationService(completer, 4, 0, log)
		result, err := svc.Generate(context.Background(), generateRequest(), nil)

		require.NoError(t, err)
		assert.Equal(t, types.GenerationFallback, result.Status)
		assert.Equal(t, "just cook it", result.Recipe.Instructions[0].Description)
	})

	t.Run("transport failure is an AI service error", func(t *testing.T) {
		completer := new(mockCompleter)
		completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

		svc := service.NewGenerationService(completer, 4, 0, log)
		_, err := svc.Generate(context.Background(), generateRequest(), nil)

		var aiErr *apperror.AIServiceError
		require.ErrorAs(t, err, &aiErr)
		assert.Contains(t, err.Error(), "recipe generation failed")
	})

	t.Run("unconfigured provider", func(t *testing.T) {
		svc := service.NewGenerationService(nil, 4, 0, log)

		_, err := svc.Generate(context.Background(), generateRequest(), nil)
		var aiErr *apperror.AIServiceError
		assert.ErrorAs(t, err, &aiErr)
		assert.Error(t, svc.Ping(context.Background()))
	})
}

func assertContainsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
