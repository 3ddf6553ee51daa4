package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
)

// Difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Provenance values for Recipe.GeneratedBy.
const (
	GeneratedByAI    = "ai"
	GeneratedByUser  = "user"
	GeneratedByAdmin = "admin"
)

// MealTypes is the fixed meal-type vocabulary.
var MealTypes = []string{"breakfast", "lunch", "dinner", "snack", "dessert"}

const (
	MinServings = 1
	MaxServings = 20
)

// Ingredient is one structured ingredient line.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

// Instruction is one numbered step. Duration is in minutes.
type Instruction struct {
	StepNumber  int    `json:"stepNumber"`
	Description string `json:"description"`
	Duration    *int   `json:"duration,omitempty"`
}

// CookingTime is in minutes. Total is always Prep + Cook after save.
type CookingTime struct {
	Prep  int `gorm:"not null;default:0" json:"prep"`
	Cook  int `gorm:"not null;default:0" json:"cook"`
	Total int `gorm:"not null;default:0;index" json:"total"`
}

type DietaryInfo struct {
	IsVegetarian bool `json:"isVegetarian"`
	IsVegan      bool `json:"isVegan"`
	IsGlutenFree bool `json:"isGlutenFree"`
	IsDairyFree  bool `json:"isDairyFree"`
	IsNutFree    bool `json:"isNutFree"`
	IsLowCarb    bool `json:"isLowCarb"`
}

// NutritionalInfo is per serving.
type NutritionalInfo struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Recipe is a stored recipe. InputIngredients holds the free-text list the
// requester supplied and is what ingredient search matches against.
type Recipe struct {
	ID               uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	Title            string           `gorm:"size:100;not null" json:"title"`
	Description      string           `gorm:"type:text" json:"description"`
	Ingredients      []Ingredient     `gorm:"serializer:json;type:text" json:"ingredients"`
	InputIngredients StringList       `gorm:"type:text" json:"inputIngredients"`
	Instructions     []Instruction    `gorm:"serializer:json;type:text" json:"instructions"`
	CookingTime      CookingTime      `gorm:"embedded;embeddedPrefix:cooking_time_" json:"cookingTime"`
	Difficulty       string           `gorm:"size:10;not null;index" json:"difficulty"`
	Servings         int              `gorm:"not null" json:"servings"`
	Cuisine          string           `gorm:"size:50;index" json:"cuisine"`
	MealType         StringList       `gorm:"type:text" json:"mealType"`
	DietaryInfo      DietaryInfo      `gorm:"embedded;embeddedPrefix:dietary_" json:"dietaryInfo"`
	NutritionalInfo  *NutritionalInfo `gorm:"serializer:json;type:text" json:"nutritionalInfo,omitempty"`
	Tags             StringList       `gorm:"type:text" json:"tags"`
	GeneratedBy      string           `gorm:"size:10;not null" json:"generatedBy"`
	CreatedBy        *uuid.UUID       `gorm:"type:varchar(36);index" json:"createdBy,omitempty"`
	IsPublic         bool             `gorm:"not null;index" json:"isPublic"`
	Ratings          []Rating         `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ratings,omitempty"`
	AverageRating    float64          `gorm:"not null;default:0;index" json:"averageRating"`
	TotalRatings     int              `gorm:"not null;default:0" json:"totalRatings"`
	Views            int              `gorm:"not null;default:0" json:"views"`
	CreatedAt        time.Time        `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// BeforeCreate assigns the id.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeSave recomputes the total cooking time and validates the row.
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	r.Title = strings.TrimSpace(r.Title)
	r.CookingTime.Total = r.CookingTime.Prep + r.CookingTime.Cook
	return r.Validate()
}

// Validate checks the persisted-shape constraints.
func (r *Recipe) Validate() error {
	verr := &apperror.ValidationError{}
	add := func(field, msg string) {
		verr.Fields = append(verr.Fields, apperror.FieldError{Field: field, Message: msg})
	}

	if r.Title == "" {
		add("title", "Recipe title is required")
	} else if len(r.Title) > 100 {
		add("title", "Title cannot exceed 100 characters")
	}
	if len(r.Ingredients) == 0 {
		add("ingredients", "At least one ingredient is required")
	}
	if len(r.Instructions) == 0 {
		add("instructions", "At least one instruction is required")
	}
	if r.Servings < MinServings || r.Servings > MaxServings {
		add("servings", "Servings must be between 1 and 20")
	}
	switch r.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		add("difficulty", "Difficulty must be easy, medium, or hard")
	}
	if len(r.MealType) == 0 {
		add("mealType", "At least one meal type is required")
	}
	for _, mt := range r.MealType {
		if !IsMealType(mt) {
			add("mealType", "Invalid meal type: "+mt)
		}
	}
	if r.CookingTime.Prep < 0 || r.CookingTime.Cook < 0 {
		add("cookingTime", "Cooking time cannot be negative")
	}
	switch r.GeneratedBy {
	case GeneratedByAI, GeneratedByUser, GeneratedByAdmin:
	default:
		add("generatedBy", "Invalid provenance: "+r.GeneratedBy)
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// IsMealType reports whether s is in the meal-type vocabulary.
func IsMealType(s string) bool {
	for _, mt := range MealTypes {
		if mt == s {
			return true
		}
	}
	return false
}
