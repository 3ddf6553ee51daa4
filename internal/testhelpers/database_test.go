package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-ai/backend/internal/models"
)

func TestDatabaseSetup(t *testing.T) {
	db := SetupTestDB(t)
	require.NotNil(t, db)

	user := CreateTestUser(t, db)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.PasswordHash)
	assert.Empty(t, user.Password)

	recipe := CreateTestRecipe(t, db, user.ID, "Test Recipe", WithInputIngredients("chicken", "rice"))
	assert.NotZero(t, recipe.ID)

	var loaded models.Recipe
	require.NoError(t, db.First(&loaded, "id = ?", recipe.ID).Error)
	assert.Equal(t, models.StringList{"chicken", "rice"}, loaded.InputIngredients)
	assert.Equal(t, 30, loaded.CookingTime.Total)
	require.NotNil(t, loaded.CreatedBy)
	assert.Equal(t, user.ID, *loaded.CreatedBy)

	save := &models.RecipeSave{UserID: user.ID, RecipeID: recipe.ID}
	require.NoError(t, db.Create(save).Error)
	assert.NotZero(t, save.ID)
}

func TestDatabasesAreIsolated(t *testing.T) {
	a := SetupTestDB(t)
	b := SetupTestDB(t)

	CreateTestUser(t, a)

	var count int64
	require.NoError(t, b.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
