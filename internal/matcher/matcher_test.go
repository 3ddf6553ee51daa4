package matcher

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-ai/backend/internal/models"
)

func recipe(title string, created time.Time, ingredients ...string) models.Recipe {
	return models.Recipe{
		ID:               uuid.New(),
		Title:            title,
		InputIngredients: ingredients,
		CreatedAt:        created,
	}
}

func TestCountMatches(t *testing.T) {
	terms := Normalize([]string{"Chicken", " rice ", ""})
	assert.Equal(t, []string{"chicken", "rice"}, terms)

	assert.Equal(t, 1, CountMatches([]string{"chicken", "broccoli"}, terms))
	assert.Equal(t, 2, CountMatches([]string{"Chicken Breast", "brown rice"}, terms))
	// one ingredient matching two terms counts once
	assert.Equal(t, 1, CountMatches([]string{"chicken fried rice"}, terms))
	assert.Equal(t, 0, CountMatches(nil, terms))
}

func TestRankMinMatch(t *testing.T) {
	now := time.Now()
	candidates := []models.Recipe{recipe("Stir fry", now, "chicken", "broccoli")}

	got, total := Rank(candidates, []string{"chicken", "rice"}, Options{MinMatch: 1})
	require.Len(t, got, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, got[0].MatchCount)

	got, total = Rank(candidates, []string{"chicken", "rice"}, Options{MinMatch: 2})
	assert.Empty(t, got)
	assert.Zero(t, total)
}

func TestRankOrdersByMatchCountFirst(t *testing.T) {
	now := time.Now()
	older := recipe("Chicken and rice", now.Add(-48*time.Hour), "chicken", "rice")
	newer := recipe("Chicken salad", now, "chicken", "lettuce")

	got, _ := Rank([]models.Recipe{newer, older}, []string{"chicken", "rice"}, Options{})
	require.Len(t, got, 2)
	assert.Equal(t, older.ID, got[0].Recipe.ID)
	assert.Equal(t, 2, got[0].MatchCount)
	assert.Equal(t, newer.ID, got[1].Recipe.ID)
}

func TestRankSecondaryKeys(t *testing.T) {
	now := time.Now()
	a := recipe("banana bread", now.Add(-time.Hour), "banana")
	a.Views, a.AverageRating = 10, 3
	b := recipe("Apple banana smoothie", now, "banana")
	b.Views, b.AverageRating = 5, 4.5

	query := []string{"banana"}

	got, _ := Rank([]models.Recipe{a, b}, query, Options{SortBy: SortCreatedAt})
	assert.Equal(t, b.ID, got[0].Recipe.ID)

	got, _ = Rank([]models.Recipe{a, b}, query, Options{SortBy: SortViews})
	assert.Equal(t, a.ID, got[0].Recipe.ID)

	got, _ = Rank([]models.Recipe{a, b}, query, Options{SortBy: SortAverageRating})
	assert.Equal(t, b.ID, got[0].Recipe.ID)

	got, _ = Rank([]models.Recipe{a, b}, query, Options{SortBy: SortTitle})
	assert.Equal(t, b.ID, got[0].Recipe.ID)
}

func TestRankPaging(t *testing.T) {
	now := time.Now()
	var candidates []models.Recipe
	for i := 0; i < 5; i++ {
		candidates = append(candidates, recipe("r", now.Add(-time.Duration(i)*time.Minute), "egg"))
	}

	got, total := Rank(candidates, []string{"egg"}, Options{Skip: 2, Limit: 2})
	assert.Equal(t, 5, total)
	require.Len(t, got, 2)
	assert.Equal(t, candidates[2].ID, got[0].Recipe.ID)
	assert.Equal(t, candidates[3].ID, got[1].Recipe.ID)

	got, total = Rank(candidates, []string{"egg"}, Options{Skip: 10, Limit: 2})
	assert.Equal(t, 5, total)
	assert.Empty(t, got)
}
