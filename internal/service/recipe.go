package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/matcher"
	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 50
)

var sortColumns = map[string]string{
	matcher.SortCreatedAt:     "created_at",
	matcher.SortAverageRating: "average_rating",
	matcher.SortViews:         "views",
	matcher.SortTitle:         "title",
}

// RecipeService handles recipe operations
type RecipeService struct {
	db              *gorm.DB
	maxIngredients  int
	defaultServings int
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, maxIngredients, defaultServings int) *RecipeService {
	return &RecipeService{
		db:              db,
		maxIngredients:  maxIngredients,
		defaultServings: defaultServings,
	}
}

// parseRecipeID treats a malformed id the same as a missing recipe.
func parseRecipeID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, &apperror.NotFoundError{Resource: "Recipe", ID: id}
	}
	return parsed, nil
}

func visibleTo(recipe *models.Recipe, viewerID *uuid.UUID) bool {
	if recipe.IsPublic {
		return true
	}
	return viewerID != nil && recipe.CreatedBy != nil && *recipe.CreatedBy == *viewerID
}

func (s *RecipeService) load(ctx context.Context, id string, viewerID *uuid.UUID) (*models.Recipe, error) {
	parsed, err := parseRecipeID(id)
	if err != nil {
		return nil, err
	}

	var recipe models.Recipe
	err = s.db.WithContext(ctx).First(&recipe, "id = ?", parsed).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperror.NotFoundError{Resource: "Recipe", ID: id}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load recipe")
	}
	if !visibleTo(&recipe, viewerID) {
		return nil, &apperror.NotFoundError{Resource: "Recipe", ID: id}
	}
	return &recipe, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// likePattern builds a case-insensitive substring pattern escaped for
// LIKE ... ESCAPE '!'.
func likePattern(term string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

// storedFragment renders term the way StringList writes it to the column,
// without the surrounding quotes.
func storedFragment(term string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(term); err != nil {
		return term
	}
	out := strings.TrimRight(buf.String(), "\n")
	return out[1 : len(out)-1]
}

func allASCII(terms []string) bool {
	for _, term := range terms {
		for i := 0; i < len(term); i++ {
			if term[i] >= utf8.RuneSelf {
				return false
			}
		}
	}
	return true
}

// CreateRecipe stores a user-authored recipe.
func (s *RecipeService) CreateRecipe(ctx context.Context, userID uuid.UUID, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	recipe := &models.Recipe{
		Title:            req.Title,
		Description:      req.Description,
		Ingredients:      req.Ingredients,
		InputIngredients: req.InputIngredients,
		Instructions:     req.Instructions,
		CookingTime:      req.CookingTime,
		Difficulty:       req.Difficulty,
		Servings:         req.Servings,
		Cuisine:          req.Cuisine,
		MealType:         req.MealType,
		DietaryInfo:      req.DietaryInfo,
		NutritionalInfo:  req.NutritionalInfo,
		Tags:             req.Tags,
		GeneratedBy:      models.GeneratedByUser,
		CreatedBy:        &userID,
		IsPublic:         true,
	}
	if req.IsPublic != nil {
		recipe.IsPublic = *req.IsPublic
	}
	if recipe.Difficulty == "" {
		recipe.Difficulty = models.DifficultyMedium
	}
	if recipe.Servings == 0 {
		recipe.Servings = s.defaultServings
	}
	if len(recipe.MealType) == 0 {
		recipe.MealType = models.StringList{"dinner"}
	}
	if len(recipe.InputIngredients) == 0 {
		for _, ing := range recipe.Ingredients {
			recipe.InputIngredients = append(recipe.InputIngredients, ing.Name)
		}
	}
	if len(recipe.InputIngredients) > s.maxIngredients {
		return nil, apperror.Invalid("inputIngredients", fmt.Sprintf("Maximum %d ingredients allowed", s.maxIngredients))
	}
	for i := range recipe.Instructions {
		if recipe.Instructions[i].StepNumber == 0 {
			recipe.Instructions[i].StepNumber = i + 1
		}
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create recipe")
	}
	return recipe, nil
}

// SaveGenerated persists a recipe produced by the generation service.
func (s *RecipeService) SaveGenerated(ctx context.Context, recipe *models.Recipe) error {
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return errors.Wrap(err, "failed to save generated recipe")
	}
	return nil
}

// GetRecipe returns a visible recipe with its ratings and bumps its view
// counter.
func (s *RecipeService) GetRecipe(ctx context.Context, id string, viewerID *uuid.UUID) (*types.RecipeDetail, error) {
	recipe, err := s.load(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(recipe).UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		return nil, errors.Wrap(err, "failed to increment views")
	}
	recipe.Views++

	if err := db.Where("recipe_id = ?", recipe.ID).Order("created_at DESC").Find(&recipe.Ratings).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load ratings")
	}

	detail := &types.RecipeDetail{Recipe: recipe}
	if viewerID != nil {
		var count int64
		err := db.Model(&models.RecipeSave{}).
			Where("user_id = ? AND recipe_id = ?", *viewerID, recipe.ID).
			Count(&count).Error
		if err != nil {
			return nil, errors.Wrap(err, "failed to check saved state")
		}
		detail.IsSaved = count > 0
	}
	return detail, nil
}

// ListRecipes returns public recipes matching the filters.
func (s *RecipeService) ListRecipes(ctx context.Context, q *types.ListRecipesQuery) ([]models.Recipe, *types.Pagination, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	query := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("is_public = ?", true)
	if q.Cuisine != "" {
		query = query.Where("LOWER(cuisine) = ?", strings.ToLower(q.Cuisine))
	}
	if q.Difficulty != "" {
		query = query.Where("difficulty = ?", q.Difficulty)
	}
	if q.MealType != "" {
		query = query.Where("meal_type LIKE ?", `%"`+q.MealType+`"%`)
	}
	if q.Search != "" {
		pattern := likePattern(q.Search)
		query = query.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", pattern, pattern)
	}
	if q.MaxTotalTime > 0 {
		query = query.Where("cooking_time_total <= ?", q.MaxTotalTime)
	}
	for column, on := range map[string]bool{
		"dietary_is_vegetarian":  q.Vegetarian,
		"dietary_is_vegan":       q.Vegan,
		"dietary_is_gluten_free": q.GlutenFree,
		"dietary_is_dairy_free":  q.DairyFree,
		"dietary_is_nut_free":    q.NutFree,
		"dietary_is_low_carb":    q.LowCarb,
	} {
		if on {
			query = query.Where(clause.Eq{Column: clause.Column{Name: column}, Value: true})
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, errors.Wrap(err, "failed to count recipes")
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[matcher.SortCreatedAt]
	}
	desc := q.SortOrder == "desc" || (q.SortOrder == "" && q.SortBy != matcher.SortTitle)

	recipes := []models.Recipe{}
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to list recipes")
	}

	return recipes, types.NewPagination(page, limit, total), nil
}

// SearchByIngredients ranks public recipes by how many of their input
// ingredients match the request.
func (s *RecipeService) SearchByIngredients(ctx context.Context, req *types.SearchByIngredientsRequest) (*types.SearchResult, *types.Pagination, error) {
	if len(req.Ingredients) > s.maxIngredients {
		return nil, nil, apperror.Invalid("ingredients", fmt.Sprintf("Maximum %d ingredients allowed", s.maxIngredients))
	}
	terms := matcher.Normalize(req.Ingredients)
	if len(terms) == 0 {
		return nil, nil, apperror.Invalid("ingredients", "At least one ingredient is required")
	}
	page, limit := normalizePage(req.Page, req.Limit)

	query := s.db.WithContext(ctx).Where("is_public = ?", true)
	// SQLite's LOWER folds ASCII only, so non-ASCII terms are left to the matcher.
	if s.db.Dialector.Name() != "sqlite" || allASCII(terms) {
		conds := make([]string, 0, len(terms))
		args := make([]interface{}, 0, len(terms))
		for _, term := range terms {
			conds = append(conds, "LOWER(input_ingredients) LIKE ? ESCAPE '!'")
			args = append(args, likePattern(storedFragment(term)))
		}
		query = query.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	candidates := []models.Recipe{}
	err := query.Order("created_at ASC").Find(&candidates).Error
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load candidate recipes")
	}

	matches, total := matcher.Rank(candidates, terms, matcher.Options{
		MinMatch: req.MinMatch,
		SortBy:   req.SortBy,
		Skip:     (page - 1) * limit,
		Limit:    limit,
	})

	return &types.SearchResult{
		Recipes:             matches,
		SearchedIngredients: terms,
	}, types.NewPagination(page, limit, int64(total)), nil
}

// SaveRecipe adds the recipe to the user's saved set.
func (s *RecipeService) SaveRecipe(ctx context.Context, userID uuid.UUID, recipeID string) error {
	recipe, err := s.load(ctx, recipeID, &userID)
	if err != nil {
		return err
	}

	save := &models.RecipeSave{UserID: userID, RecipeID: recipe.ID}
	err = s.db.WithContext(ctx).Create(save).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperror.BadRequestError{Message: "Recipe already saved"}
	}
	if err != nil {
		return errors.Wrap(err, "failed to save recipe")
	}
	return nil
}

// UnsaveRecipe removes the recipe from the user's saved set. Removing a
// recipe that was not saved succeeds.
func (s *RecipeService) UnsaveRecipe(ctx context.Context, userID uuid.UUID, recipeID string) error {
	parsed, err := parseRecipeID(recipeID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", parsed).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to load recipe")
	}
	if count == 0 {
		return &apperror.NotFoundError{Resource: "Recipe", ID: recipeID}
	}

	err = s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, parsed).
		Delete(&models.RecipeSave{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to unsave recipe")
	}
	return nil
}

// SavedRecipes lists the user's saved recipes, most recently saved first.
func (s *RecipeService) SavedRecipes(ctx context.Context, userID uuid.UUID, q *types.PageQuery) ([]models.Recipe, *types.Pagination, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Joins("JOIN recipe_saves ON recipe_saves.recipe_id = recipes.id").
		Where("recipe_saves.user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, errors.Wrap(err, "failed to count saved recipes")
	}

	recipes := []models.Recipe{}
	err := query.
		Order("recipe_saves.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to list saved recipes")
	}

	return recipes, types.NewPagination(page, limit, total), nil
}

// RateRecipe records the user's rating, replacing any earlier one, and
// recomputes the recipe's aggregate in the same transaction.
func (s *RecipeService) RateRecipe(ctx context.Context, userID uuid.UUID, recipeID string, req *types.RateRecipeRequest) (*models.Recipe, error) {
	if req.Rating < models.MinRating || req.Rating > models.MaxRating {
		return nil, apperror.Invalid("rating", "Rating must be between 1 and 5")
	}

	recipe, err := s.load(ctx, recipeID, &userID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rating := &models.Rating{
			RecipeID: recipe.ID,
			UserID:   userID,
			Rating:   req.Rating,
			Comment:  req.Comment,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
		}).Create(rating).Error
		if err != nil {
			return errors.Wrap(err, "failed to upsert rating")
		}

		var ratings []models.Rating
		if err := tx.Where("recipe_id = ?", recipe.ID).Order("created_at DESC").Find(&ratings).Error; err != nil {
			return errors.Wrap(err, "failed to reload ratings")
		}

		avg, count := models.SummarizeRatings(ratings)
		err = tx.Model(recipe).UpdateColumns(map[string]interface{}{
			"average_rating": avg,
			"total_ratings":  count,
		}).Error
		if err != nil {
			return errors.Wrap(err, "failed to update rating summary")
		}

		recipe.Ratings = ratings
		recipe.AverageRating = avg
		recipe.TotalRatings = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}
