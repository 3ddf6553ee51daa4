package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeSave links a user to a recipe they saved. It is the only record of
// the relation; both the user's saved list and the recipe's savers are read
// from it.
type RecipeSave struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_save_user_recipe" json:"userId"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_save_user_recipe;index" json:"recipeId"`
}

func (RecipeSave) TableName() string {
	return "recipe_saves"
}

func (s *RecipeSave) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
