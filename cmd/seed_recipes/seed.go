package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/service"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

// SeedFile is the YAML layout accepted by seed_recipes. Recipes are owned
// by the author account, which is created when it does not exist yet.
type SeedFile struct {
	Author  SeedAuthor   `yaml:"author"`
	Recipes []SeedRecipe `yaml:"recipes"`
}

type SeedAuthor struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type SeedIngredient struct {
	Name   string `yaml:"name"`
	Amount string `yaml:"amount"`
	Unit   string `yaml:"unit"`
}

type SeedRecipe struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Ingredients []SeedIngredient `yaml:"ingredients"`
	Steps       []string         `yaml:"steps"`
	PrepTime    int              `yaml:"prepTime"`
	CookTime    int              `yaml:"cookTime"`
	Difficulty  string           `yaml:"difficulty"`
	Servings    int              `yaml:"servings"`
	Cuisine     string           `yaml:"cuisine"`
	MealType    []string         `yaml:"mealType"`
	Dietary     []string         `yaml:"dietary"`
	Tags        []string         `yaml:"tags"`
}

// LoadSeedFile reads and decodes a seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read seed file")
	}

	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse seed file")
	}
	if file.Author.Email == "" {
		return nil, errors.New("seed file has no author email")
	}
	return &file, nil
}

func (r SeedRecipe) request() *types.CreateRecipeRequest {
	req := &types.CreateRecipeRequest{
		Title:       r.Title,
		Description: r.Description,
		CookingTime: models.CookingTime{Prep: r.PrepTime, Cook: r.CookTime},
		Difficulty:  r.Difficulty,
		Servings:    r.Servings,
		Cuisine:     r.Cuisine,
		MealType:    r.MealType,
		Tags:        r.Tags,
	}
	for _, ing := range r.Ingredients {
		req.Ingredients = append(req.Ingredients, models.Ingredient{Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit})
	}
	for i, step := range r.Steps {
		req.Instructions = append(req.Instructions, models.Instruction{StepNumber: i + 1, Description: step})
	}
	for _, flag := range r.Dietary {
		switch flag {
		case "vegetarian":
			req.DietaryInfo.IsVegetarian = true
		case "vegan":
			req.DietaryInfo.IsVegan = true
			req.DietaryInfo.IsVegetarian = true
			req.DietaryInfo.IsDairyFree = true
		case "gluten-free":
			req.DietaryInfo.IsGlutenFree = true
		case "dairy-free":
			req.DietaryInfo.IsDairyFree = true
		case "nut-free":
			req.DietaryInfo.IsNutFree = true
		case "low-carb":
			req.DietaryInfo.IsLowCarb = true
		}
	}
	return req
}

// Seeder inserts a seed file through the regular services so model
// validation and defaults apply.
type Seeder struct {
	auth    service.IAuthService
	recipes service.IRecipeService
	log     logrus.FieldLogger
}

// Seed creates the author if needed and inserts every recipe. A recipe that
// fails validation is logged and skipped. It returns the number inserted.
func (s *Seeder) Seed(ctx context.Context, file *SeedFile) (int, error) {
	author, _, err := s.auth.Register(ctx, &types.RegisterRequest{
		Name:     file.Author.Name,
		Email:    file.Author.Email,
		Password: file.Author.Password,
	})
	var dup *apperror.DuplicateError
	if errors.As(err, &dup) {
		author, _, err = s.auth.Login(ctx, file.Author.Email, file.Author.Password)
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare seed author")
	}

	inserted := 0
	for _, r := range file.Recipes {
		recipe, err := s.recipes.CreateRecipe(ctx, author.ID, r.request())
		if err != nil {
			s.log.WithError(err).WithField("title", r.Title).Warn("skipping recipe")
			continue
		}
		s.log.WithField("id", recipe.ID).Infof("seeded %q", recipe.Title)
		inserted++
	}
	return inserted, nil
}
