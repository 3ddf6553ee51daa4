package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/logging"
	"github.com/pageza/recipe-ai/backend/internal/middleware"
	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/service"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

// RecipeHandler handles recipe-related HTTP requests
type RecipeHandler struct {
	recipeService  service.IRecipeService
	generator      service.IGenerationService
	authService    service.IAuthService
	maxIngredients int
	aiLimiter      gin.HandlerFunc
}

// NewRecipeHandler creates a new RecipeHandler instance. aiLimiter may be
// nil to disable the generation rate limit.
func NewRecipeHandler(
	recipeService service.IRecipeService,
	generator service.IGenerationService,
	authService service.IAuthService,
	maxIngredients int,
	aiLimiter gin.HandlerFunc,
) *RecipeHandler {
	if aiLimiter == nil {
		aiLimiter = func(c *gin.Context) { c.Next() }
	}
	return &RecipeHandler{
		recipeService:  recipeService,
		generator:      generator,
		authService:    authService,
		maxIngredients: maxIngredients,
		aiLimiter:      aiLimiter,
	}
}

// RegisterRoutes registers all recipe routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuth(h.authService)

	recipes := router.Group("/recipes")
	{
		recipes.POST("/generate", required, h.aiLimiter, h.GenerateRecipe)
		recipes.POST("/search-by-ingredients", h.SearchByIngredients)
		recipes.GET("/saved", required, h.SavedRecipes)
		recipes.GET("", h.ListRecipes)
		recipes.POST("", required, h.CreateRecipe)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.POST("/:id/save", required, h.SaveRecipe)
		recipes.DELETE("/:id/save", required, h.UnsaveRecipe)
		recipes.POST("/:id/rate", required, h.RateRecipe)
	}
}

func (h *RecipeHandler) checkIngredientCount(ingredients []string) error {
	if len(ingredients) > h.maxIngredients {
		return apperror.Invalid("ingredients", fmt.Sprintf("Maximum %d ingredients allowed", h.maxIngredients))
	}
	return nil
}

// GenerateRecipe asks the model for a recipe and stores it. A storage
// failure after a successful generation still returns the recipe, with
// saved=false.
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.checkIngredientCount(req.Ingredients); err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.authService.GetUserByID(ctx, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.generator.Generate(ctx, &req, &user.Preferences)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe := result.Recipe
	recipe.CreatedBy = &userID
	recipe.GeneratedBy = models.GeneratedByAI

	saved := true
	if err := h.recipeService.SaveGenerated(ctx, recipe); err != nil {
		saved = false
		logging.FromContext(ctx).WithError(err).Warn("generated recipe could not be saved")
	}

	respond(c, http.StatusCreated, "Recipe generated successfully", &types.GenerateRecipeResponse{
		Recipe:     recipe,
		Generation: types.GenerationInfo{Status: result.Status},
		Saved:      saved,
	})
}

func (h *RecipeHandler) SearchByIngredients(c *gin.Context) {
	var req types.SearchByIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.checkIngredientCount(req.Ingredients); err != nil {
		_ = c.Error(err)
		return
	}

	result, page, err := h.recipeService.SearchByIngredients(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respondPage(c, http.StatusOK, fmt.Sprintf("Found %d recipes", page.Total), result, page)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var q types.ListRecipesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(err)
		return
	}

	recipes, page, err := h.recipeService.ListRecipes(c.Request.Context(), &q)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respondPage(c, http.StatusOK, "Recipes retrieved successfully", recipes, page)
}

func (h *RecipeHandler) SavedRecipes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var q types.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(err)
		return
	}

	recipes, page, err := h.recipeService.SavedRecipes(c.Request.Context(), userID, &q)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respondPage(c, http.StatusOK, "Saved recipes retrieved successfully", recipes, page)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusCreated, "Recipe created successfully", recipe)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	detail, err := h.recipeService.GetRecipe(c.Request.Context(), c.Param("id"), middleware.OptionalUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Recipe retrieved successfully", detail)
}

func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.recipeService.SaveRecipe(c.Request.Context(), userID, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Recipe saved successfully", gin.H{"recipeId": c.Param("id"), "saved": true})
}

func (h *RecipeHandler) UnsaveRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.recipeService.UnsaveRecipe(c.Request.Context(), userID, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Recipe removed from saved", gin.H{"recipeId": c.Param("id"), "saved": false})
}

func (h *RecipeHandler) RateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.RateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipeService.RateRecipe(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Recipe rated successfully", gin.H{
		"averageRating": recipe.AverageRating,
		"totalRatings":  recipe.TotalRatings,
	})
}
