package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/service"
	"github.com/pageza/recipe-ai/backend/internal/testhelpers"
)

func TestLoadSeedFile(t *testing.T) {
	file, err := LoadSeedFile("recipes.yaml")
	require.NoError(t, err)
	assert.Equal(t, "kitchen@example.com", file.Author.Email)
	require.Len(t, file.Recipes, 3)
	assert.Equal(t, []string{"vegan", "gluten-free"}, file.Recipes[1].Dietary)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	noAuthor := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(noAuthor, []byte("recipes: []\n"), 0o600))
	_, err = LoadSeedFile(noAuthor)
	assert.Error(t, err)
}

func TestSeedRecipeRequest(t *testing.T) {
	req := SeedRecipe{
		Title:   "Toast",
		Steps:   []string{"Toast the bread.", "Butter it."},
		Dietary: []string{"vegan", "unknown"},
	}.request()

	require.Len(t, req.Instructions, 2)
	assert.Equal(t, 2, req.Instructions[1].StepNumber)
	assert.True(t, req.DietaryInfo.IsVegan)
	assert.True(t, req.DietaryInfo.IsVegetarian)
	assert.True(t, req.DietaryInfo.IsDairyFree)
	assert.False(t, req.DietaryInfo.IsGlutenFree)
}

func TestSeederIsRepeatable(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	seeder := &Seeder{
		auth:    service.NewAuthService(db, "seed-secret", time.Hour),
		recipes: service.NewRecipeService(db, 20, 4),
		log:     testhelpers.Logger(),
	}

	file, err := LoadSeedFile("recipes.yaml")
	require.NoError(t, err)
	file.Recipes = append(file.Recipes, SeedRecipe{Title: "No ingredients"})

	n, err := seeder.Seed(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// A second run reuses the author account.
	n, err = seeder.Seed(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var users, recipes int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Recipe{}).Count(&recipes)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 6, recipes)

	var curry models.Recipe
	require.NoError(t, db.Where("title = ?", "Chickpea Spinach Curry").First(&curry).Error)
	assert.True(t, curry.IsPublic)
	assert.Equal(t, models.GeneratedByUser, curry.GeneratedBy)
	assert.Equal(t, 25, curry.CookingTime.Total)
	assert.True(t, curry.DietaryInfo.IsVegan)
}
