package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

// UserService serves public profile lookups
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetProfile returns the public view of a user. The owner also sees email
// and preferences. Deactivated users are reported as missing.
func (s *UserService) GetProfile(ctx context.Context, id string, viewerID *uuid.UUID) (*types.PublicProfile, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, &apperror.NotFoundError{Resource: "User", ID: id}
	}

	var user models.User
	err = s.db.WithContext(ctx).First(&user, "id = ?", parsed).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.IsActive) {
		return nil, &apperror.NotFoundError{Resource: "User", ID: id}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("created_by = ? AND is_public = ?", user.ID, true).
		Count(&count).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to count recipes")
	}

	profile := &types.PublicProfile{
		ID:          user.ID,
		Name:        user.Name,
		AvatarURL:   user.AvatarURL,
		CreatedAt:   user.CreatedAt,
		RecipeCount: count,
	}
	if viewerID != nil && *viewerID == user.ID {
		profile.Email = user.Email
		profile.Preferences = &user.Preferences
	}
	return profile, nil
}
