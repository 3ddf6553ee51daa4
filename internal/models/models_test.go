package models_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/testhelpers"
)

func TestUserPasswordHashedOnlyWhenReplaced(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateTestUser(t, db)

	original := user.PasswordHash
	assert.True(t, user.CheckPassword(testhelpers.TestPassword))

	user.Name = "Renamed"
	require.NoError(t, db.Save(user).Error)
	assert.Equal(t, original, user.PasswordHash)

	user.Password = "another-secret"
	require.NoError(t, db.Save(user).Error)
	assert.NotEqual(t, original, user.PasswordHash)
	assert.True(t, user.CheckPassword("another-secret"))
	assert.False(t, user.CheckPassword(testhelpers.TestPassword))
}

func TestUserEmailLowercasedAndUnique(t *testing.T) {
	db := testhelpers.SetupTestDB(t)

	first := &models.User{Name: "A", Email: "  Chef@Example.COM ", Password: "secret1", IsActive: true}
	require.NoError(t, db.Create(first).Error)
	assert.Equal(t, "chef@example.com", first.Email)

	second := &models.User{Name: "B", Email: "chef@example.com", Password: "secret1", IsActive: true}
	err := db.Create(second).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestUserShortPasswordRejected(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	err := db.Create(&models.User{Name: "A", Email: "a@b.com", Password: "123"}).Error

	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "password", verr.Fields[0].Field)
}

func TestUserOverlongPasswordRejected(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	// 30 runes, 90 bytes
	err := db.Create(&models.User{Name: "A", Email: "a@b.com", Password: strings.Repeat("€", 30)}).Error

	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "password", verr.Fields[0].Field)
	assert.Equal(t, http.StatusBadRequest, apperror.Classify(err).Status())
}

func TestRecipeTotalCookingTimeRecomputed(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateTestUser(t, db)
	recipe := testhelpers.CreateTestRecipe(t, db, user.ID, "Soup")
	assert.Equal(t, 30, recipe.CookingTime.Total)

	recipe.CookingTime = models.CookingTime{Prep: 5, Cook: 7, Total: 999}
	require.NoError(t, db.Save(recipe).Error)

	var loaded models.Recipe
	require.NoError(t, db.First(&loaded, "id = ?", recipe.ID).Error)
	assert.Equal(t, 12, loaded.CookingTime.Total)
}

func TestRecipeValidate(t *testing.T) {
	r := &models.Recipe{
		Servings:    25,
		Difficulty:  "impossible",
		MealType:    models.StringList{"brunch"},
		GeneratedBy: models.GeneratedByAI,
	}
	err := r.Validate()

	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))

	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"title", "ingredients", "instructions", "servings", "difficulty", "mealType"} {
		assert.True(t, fields[want], "expected %s to fail", want)
	}
}

func TestSummarizeRatings(t *testing.T) {
	avg, count := models.SummarizeRatings(nil)
	assert.Zero(t, avg)
	assert.Zero(t, count)

	avg, count = models.SummarizeRatings([]models.Rating{{Rating: 5}, {Rating: 4}, {Rating: 3}})
	assert.InDelta(t, 4.0, avg, 1e-9)
	assert.Equal(t, 3, count)
}

func TestStringListRoundTripsEmpty(t *testing.T) {
	var l models.StringList
	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	require.NoError(t, l.Scan(nil))
	assert.NotNil(t, l)
	assert.Len(t, l, 0)
}
