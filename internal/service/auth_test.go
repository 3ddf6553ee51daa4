package service_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/service"
	"github.com/pageza/recipe-ai/backend/internal/testhelpers"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

const testSecret = "test-secret"

func setupAuthTest(t *testing.T) (*gorm.DB, *service.AuthService) {
	db := testhelpers.SetupTestDB(t)
	return db, service.NewAuthService(db, testSecret, time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	db, svc := setupAuthTest(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, &types.RegisterRequest{
		Name:        "Jane",
		Email:       "  Jane@Example.com ",
		Password:    "password123",
		Preferences: &models.Preferences{DefaultServings: 2},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.Equal(t, 2, user.Preferences.DefaultServings)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.True(t, stored.CheckPassword("password123"))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	t.Run("duplicate email", func(t *testing.T) {
		_, _, err := svc.Register(ctx, &types.RegisterRequest{
			Name:     "Other",
			Email:    "JANE@example.com",
			Password: "password123",
		})
		var dup *apperror.DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "email 'jane@example.com' already exists", dup.Error())
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		_, _, err := svc.Register(ctx, &types.RegisterRequest{
			Name:     "Long",
			Email:    "long@example.com",
			Password: strings.Repeat("x", 80),
		})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, http.StatusBadRequest, apperror.Classify(err).Status())
	})
}

func TestAuthService_Login(t *testing.T) {
	db, svc := setupAuthTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db)

	t.Run("success records last login", func(t *testing.T) {
		got, token, err := svc.Login(ctx, user.Email, testhelpers.TestPassword)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		require.NotNil(t, got.LastLogin)

		var stored models.User
		require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
		assert.NotNil(t, stored.LastLogin)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, user.Email, "wrong-password")
		var authErr *apperror.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Invalid email or password", authErr.Error())
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", testhelpers.TestPassword)
		var authErr *apperror.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Invalid email or password", authErr.Error())
	})

	t.Run("deactivated account", func(t *testing.T) {
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).UpdateColumn("is_active", false).Error)

		_, _, err := svc.Login(ctx, user.Email, testhelpers.TestPassword)
		var authErr *apperror.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Account is deactivated", authErr.Error())
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	_, svc := setupAuthTest(t)
	userID := uuid.New()

	t.Run("tampered signature", func(t *testing.T) {
		other := service.NewAuthService(nil, "another-secret", time.Hour)
		token, err := other.GenerateToken(userID)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		var authErr *apperror.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Invalid token. Please log in again.", authErr.Error())
	})

	t.Run("expired", func(t *testing.T) {
		expired := service.NewAuthService(nil, testSecret, -time.Minute)
		token, err := expired.GenerateToken(userID)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		var authErr *apperror.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, authErr.Error(), "expired")
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, &types.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			UserID:           userID,
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestAuthService_Me(t *testing.T) {
	db, svc := setupAuthTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db)
	first := testhelpers.CreateTestRecipe(t, db, user.ID, "First")
	second := testhelpers.CreateTestRecipe(t, db, user.ID, "Second")

	now := time.Now()
	require.NoError(t, db.Create(&models.RecipeSave{UserID: user.ID, RecipeID: first.ID, CreatedAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&models.RecipeSave{UserID: user.ID, RecipeID: second.ID, CreatedAt: now}).Error)

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID.String(), first.ID.String()}, me.SavedRecipes)

	t.Run("deleted user", func(t *testing.T) {
		_, err := svc.Me(ctx, uuid.New())
		var authErr *apperror.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "The user belonging to this token no longer exists", authErr.Error())
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	db, svc := setupAuthTest(t)
	user := testhelpers.CreateTestUser(t, db)
	oldHash := user.PasswordHash

	name := "  Renamed  "
	updated, err := svc.UpdateProfile(context.Background(), user.ID, &types.UpdateProfileRequest{
		Name:        &name,
		Preferences: &models.Preferences{DietaryRestrictions: []string{"vegan"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, []string{"vegan"}, stored.Preferences.DietaryRestrictions)
	assert.Equal(t, oldHash, stored.PasswordHash, "hash must not change without a new password")
}

func TestAuthService_ChangePassword(t *testing.T) {
	db, svc := setupAuthTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db)

	t.Run("wrong current password", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, user.ID, &types.ChangePasswordRequest{
			CurrentPassword: "nope",
			NewPassword:     "newpassword",
		})
		var authErr *apperror.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Current password is incorrect", authErr.Error())
	})

	t.Run("too short", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, user.ID, &types.ChangePasswordRequest{
			CurrentPassword: testhelpers.TestPassword,
			NewPassword:     "abc",
		})
		var verr *apperror.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("success", func(t *testing.T) {
		token, err := svc.ChangePassword(ctx, user.ID, &types.ChangePasswordRequest{
			CurrentPassword: testhelpers.TestPassword,
			NewPassword:     "brand-new-pass",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		_, _, err = svc.Login(ctx, user.Email, "brand-new-pass")
		assert.NoError(t, err)
		_, _, err = svc.Login(ctx, user.Email, testhelpers.TestPassword)
		assert.Error(t, err)
	})
}

func TestAuthService_SetAvatar(t *testing.T) {
	db, svc := setupAuthTest(t)
	user := testhelpers.CreateTestUser(t, db)

	updated, err := svc.SetAvatar(context.Background(), user.ID, "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", updated.AvatarURL)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, "https://cdn.example.com/a.png", stored.AvatarURL)
}
