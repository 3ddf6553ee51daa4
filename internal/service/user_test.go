package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/service"
	"github.com/pageza/recipe-ai/backend/internal/testhelpers"
)

func TestUserService_GetProfile(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewUserService(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db)
	testhelpers.CreateTestRecipe(t, db, user.ID, "Public One")
	testhelpers.CreateTestRecipe(t, db, user.ID, "Public Two")
	testhelpers.CreateTestRecipe(t, db, user.ID, "Private", testhelpers.Private())

	t.Run("public view", func(t *testing.T) {
		profile, err := svc.GetProfile(ctx, user.ID.String(), nil)
		require.NoError(t, err)
		assert.Equal(t, user.Name, profile.Name)
		assert.Equal(t, int64(2), profile.RecipeCount)
		assert.Empty(t, profile.Email)
		assert.Nil(t, profile.Preferences)
	})

	t.Run("owner view", func(t *testing.T) {
		profile, err := svc.GetProfile(ctx, user.ID.String(), &user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, profile.Email)
		assert.NotNil(t, profile.Preferences)
	})

	t.Run("missing, malformed and inactive users", func(t *testing.T) {
		inactive := testhelpers.CreateTestUser(t, db)
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", inactive.ID).UpdateColumn("is_active", false).Error)

		for _, id := range []string{uuid.NewString(), "bogus", inactive.ID.String()} {
			_, err := svc.GetProfile(ctx, id, nil)
			var nf *apperror.NotFoundError
			assert.ErrorAs(t, err, &nf, id)
		}
	})
}
