package types

import (
	"github.com/pageza/recipe-ai/backend/internal/matcher"
	"github.com/pageza/recipe-ai/backend/internal/models"
)

// GenerateRecipeRequest represents the request body for AI generation
type GenerateRecipeRequest struct {
	Ingredients         []string `json:"ingredients" binding:"required,min=1,dive,required,max=50"`
	Servings            int      `json:"servings" binding:"omitempty,min=1,max=20"`
	MealType            string   `json:"mealType" binding:"omitempty,oneof=breakfast lunch dinner snack dessert"`
	Difficulty          string   `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	DietaryRestrictions []string `json:"dietaryRestrictions" binding:"omitempty,dive,max=50"`
	Cuisine             string   `json:"cuisine" binding:"omitempty,max=50"`
	MaxCookingTime      int      `json:"maxCookingTime" binding:"omitempty,min=1,max=1440"`
}

// SearchByIngredientsRequest represents the ingredient search body
type SearchByIngredientsRequest struct {
	Ingredients []string `json:"ingredients" binding:"required,min=1,dive,required,max=50"`
	Page        int      `json:"page" binding:"omitempty,min=1"`
	Limit       int      `json:"limit" binding:"omitempty,min=1,max=50"`
	MinMatch    int      `json:"minMatch" binding:"omitempty,min=1"`
	SortBy      string   `json:"sortBy" binding:"omitempty,oneof=createdAt averageRating views title"`
}

// ListRecipesQuery is bound from the query string of GET /api/recipes.
type ListRecipesQuery struct {
	Page         int    `form:"page" binding:"omitempty,min=1"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=50"`
	Cuisine      string `form:"cuisine" binding:"omitempty,max=50"`
	Difficulty   string `form:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	MealType     string `form:"mealType" binding:"omitempty,oneof=breakfast lunch dinner snack dessert"`
	Search       string `form:"search" binding:"omitempty,max=100"`
	Vegetarian   bool   `form:"vegetarian"`
	Vegan        bool   `form:"vegan"`
	GlutenFree   bool   `form:"glutenFree"`
	DairyFree    bool   `form:"dairyFree"`
	NutFree      bool   `form:"nutFree"`
	LowCarb      bool   `form:"lowCarb"`
	MaxTotalTime int    `form:"maxTime" binding:"omitempty,min=1"`
	SortBy       string `form:"sortBy" binding:"omitempty,oneof=createdAt averageRating views title"`
	SortOrder    string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// PageQuery is bound for simple paged listings.
type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

type RateRecipeRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=500"`
}

// CreateRecipeRequest represents a user-authored recipe
type CreateRecipeRequest struct {
	Title            string                  `json:"title" binding:"required,max=100"`
	Description      string                  `json:"description" binding:"omitempty,max=500"`
	Ingredients      []models.Ingredient     `json:"ingredients" binding:"required,min=1"`
	InputIngredients []string                `json:"inputIngredients" binding:"omitempty,dive,max=50"`
	Instructions     []models.Instruction    `json:"instructions" binding:"required,min=1"`
	CookingTime      models.CookingTime      `json:"cookingTime"`
	Difficulty       string                  `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Servings         int                     `json:"servings" binding:"omitempty,min=1,max=20"`
	Cuisine          string                  `json:"cuisine" binding:"omitempty,max=50"`
	MealType         []string                `json:"mealType" binding:"omitempty,dive,oneof=breakfast lunch dinner snack dessert"`
	DietaryInfo      models.DietaryInfo      `json:"dietaryInfo"`
	NutritionalInfo  *models.NutritionalInfo `json:"nutritionalInfo"`
	Tags             []string                `json:"tags" binding:"omitempty,dive,max=30"`
	IsPublic         *bool                   `json:"isPublic"`
}

// GenerationStatus tells a parsed generation from a degraded one.
type GenerationStatus string

const (
	GenerationParsed   GenerationStatus = "parsed"
	GenerationFallback GenerationStatus = "fallback"
)

// GenerateRecipeResponse is the data of POST /api/recipes/generate.
type GenerateRecipeResponse struct {
	Recipe     *models.Recipe `json:"recipe"`
	Generation GenerationInfo `json:"generation"`
	Saved      bool           `json:"saved"`
}

type GenerationInfo struct {
	Status GenerationStatus `json:"status"`
}

// RecipeDetail adds caller-specific state to a recipe.
type RecipeDetail struct {
	*models.Recipe
	IsSaved bool `json:"isSaved"`
}

// SearchResult is the data of POST /api/recipes/search-by-ingredients.
type SearchResult struct {
	Recipes             []matcher.Match `json:"recipes"`
	SearchedIngredients []string        `json:"searchedIngredients"`
}

// Pagination is attached to list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination computes the page count.
func NewPagination(page, limit int, total int64) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
