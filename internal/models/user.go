package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
)

// Preferences are the user's generation defaults.
type Preferences struct {
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	FavoriteIngredients []string `json:"favoriteIngredients"`
	DislikedIngredients []string `json:"dislikedIngredients"`
	DefaultServings     int      `json:"defaultServings"`
}

// User is an account. Password is transient: when set at save time it is
// hashed into PasswordHash and cleared.
type User struct {
	ID           uuid.UUID   `gorm:"type:varchar(36);primarykey" json:"id"`
	Name         string      `gorm:"size:50;not null" json:"name"`
	Email        string      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password     string      `gorm:"-" json:"-"`
	PasswordHash string      `gorm:"not null" json:"-"`
	Preferences  Preferences `gorm:"serializer:json;type:text" json:"preferences"`
	AvatarURL    string      `gorm:"size:512" json:"avatarUrl,omitempty"`
	IsActive     bool        `gorm:"not null" json:"isActive"`
	LastLogin    *time.Time  `json:"lastLogin,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// BeforeCreate assigns the id.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeSave normalizes the email and hashes a replaced password.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Name = strings.TrimSpace(u.Name)

	if u.Password == "" {
		return nil
	}
	if len(u.Password) < 6 {
		return apperror.Invalid("password", "Password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return apperror.Invalid("password", "Password must be at most 72 bytes")
	}
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.Password = ""
	return nil
}

// CheckPassword reports whether candidate matches the stored hash.
func (u *User) CheckPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate)) == nil
}
