package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cenkalti/backoff/v5"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

const systemPrompt = "You are a professional chef and recipe developer. " +
	"You create practical, well-tested home recipes and always answer with a single valid JSON object and nothing else."

// Completer sends one system/user exchange to a language model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// AzureCompleter talks to an Azure OpenAI chat deployment.
type AzureCompleter struct {
	client     openai.Client
	deployment string
	maxTries   uint
	log        logrus.FieldLogger
}

// NewAzureCompleter builds a completer for the given Azure deployment.
func NewAzureCompleter(endpoint, apiKey, apiVersion, deployment string, log logrus.FieldLogger) *AzureCompleter {
	client := openai.NewClient(
		azure.WithEndpoint(endpoint, apiVersion),
		azure.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	return &AzureCompleter{
		client:     client,
		deployment: deployment,
		maxTries:   3,
		log:        log,
	}
}

// Complete retries throttling and server errors with exponential backoff.
// Other provider errors fail immediately.
func (c *AzureCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       openai.ChatModel(c.deployment),
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2000),
	}

	return backoff.Retry(ctx, func() (string, error) {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) && !retryableStatus(apiErr.StatusCode) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", backoff.Permanent(fmt.Errorf("no choices in completion response"))
		}
		return resp.Choices[0].Message.Content, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			c.log.WithError(err).WithField("retry_in", d.String()).Warn("completion request failed, retrying")
		}),
	)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// GenerationResult is either a parsed recipe or a placeholder built from the
// raw model reply. RawText is kept in both cases.
type GenerationResult struct {
	Recipe  *models.Recipe
	Status  types.GenerationStatus
	RawText string
}

// GenerationService builds prompts, calls the completer and shapes the reply.
type GenerationService struct {
	completer       Completer
	defaultServings int
	timeout         time.Duration
	log             logrus.FieldLogger
}

// NewGenerationService accepts a nil completer; every call then fails with an
// AI service error.
func NewGenerationService(completer Completer, defaultServings int, timeout time.Duration, log logrus.FieldLogger) *GenerationService {
	return &GenerationService{
		completer:       completer,
		defaultServings: defaultServings,
		timeout:         timeout,
		log:             log,
	}
}

var errAINotConfigured = errors.New("AI provider is not configured")

func (s *GenerationService) Generate(ctx context.Context, req *types.GenerateRecipeRequest, prefs *models.Preferences) (*GenerationResult, error) {
	if s.completer == nil {
		return nil, &apperror.AIServiceError{Cause: errAINotConfigured}
	}

	merged := *req
	if merged.Servings == 0 {
		merged.Servings = s.defaultServings
		if prefs != nil && prefs.DefaultServings > 0 {
			merged.Servings = prefs.DefaultServings
		}
	}
	if len(merged.DietaryRestrictions) == 0 && prefs != nil {
		merged.DietaryRestrictions = prefs.DietaryRestrictions
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.completer.Complete(ctx, systemPrompt, BuildRecipePrompt(&merged, prefs))
	if err != nil {
		return nil, &apperror.AIServiceError{Cause: err}
	}

	recipe, status := ParseRecipeResponse(raw, &merged)
	if status == types.GenerationFallback {
		s.log.WithField("raw_length", len(raw)).Warn("could not parse generated recipe, using fallback")
	}
	return &GenerationResult{Recipe: recipe, Status: status, RawText: raw}, nil
}

// Ping reports whether a provider is wired.
func (s *GenerationService) Ping(ctx context.Context) error {
	if s.completer == nil {
		return &apperror.AIServiceError{Cause: errAINotConfigured}
	}
	return ctx.Err()
}

// BuildRecipePrompt renders the user message for a generation request.
func BuildRecipePrompt(req *types.GenerateRecipeRequest, prefs *models.Preferences) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a recipe using these ingredients: %s.\n", strings.Join(req.Ingredients, ", "))
	fmt.Fprintf(&b, "Servings: %d\n", req.Servings)
	if req.MealType != "" {
		fmt.Fprintf(&b, "Meal type: %s\n", req.MealType)
	}
	if req.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	}
	if len(req.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "Dietary restrictions: %s\n", strings.Join(req.DietaryRestrictions, ", "))
	}
	if req.Cuisine != "" {
		fmt.Fprintf(&b, "Cuisine: %s\n", req.Cuisine)
	}
	if req.MaxCookingTime > 0 {
		fmt.Fprintf(&b, "Maximum total cooking time: %d minutes\n", req.MaxCookingTime)
	}
	if prefs != nil && len(prefs.DislikedIngredients) > 0 {
		fmt.Fprintf(&b, "Avoid these ingredients: %s\n", strings.Join(prefs.DislikedIngredients, ", "))
	}

	b.WriteString(`
Respond with ONLY a JSON object in exactly this shape:
{
  "title": "string",
  "description": "string",
  "ingredients": [{"name": "string", "amount": "string", "unit": "string"}],
  "instructions": [{"stepNumber": 1, "description": "string", "duration": 5}],
  "cookingTime": {"prep": 10, "cook": 20, "total": 30},
  "difficulty": "easy|medium|hard",
  "cuisine": "string",
  "mealType": ["breakfast|lunch|dinner|snack|dessert"],
  "dietaryInfo": {"isVegetarian": false, "isVegan": false, "isGlutenFree": false, "isDairyFree": false, "isNutFree": false, "isLowCarb": false},
  "nutritionalInfo": {"calories": 0, "protein": 0, "carbs": 0, "fat": 0, "fiber": 0},
  "tags": ["string"]
}
Times are in minutes. Nutritional values are per serving.`)

	return b.String()
}

// flexInt accepts a JSON number or a string with a leading number ("4",
// "30 minutes").
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexInt(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	digits := strings.TrimSpace(str)
	end := strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) })
	if end >= 0 {
		digits = digits[:end]
	}
	if digits == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// generatedIngredient accepts either an object or a bare string.
type generatedIngredient models.Ingredient

func (g *generatedIngredient) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*g = generatedIngredient{Name: name}
		return nil
	}
	var ing struct {
		Name   string          `json:"name"`
		Amount json.RawMessage `json:"amount"`
		Unit   string          `json:"unit"`
	}
	if err := json.Unmarshal(data, &ing); err != nil {
		return err
	}
	*g = generatedIngredient{Name: ing.Name, Amount: rawScalar(ing.Amount), Unit: ing.Unit}
	return nil
}

// generatedInstruction accepts either an object or a bare string.
type generatedInstruction struct {
	StepNumber  flexInt
	Description string
	Duration    *flexInt
}

func (g *generatedInstruction) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*g = generatedInstruction{Description: text}
		return nil
	}
	var step struct {
		StepNumber  flexInt  `json:"stepNumber"`
		Description string   `json:"description"`
		Duration    *flexInt `json:"duration"`
	}
	if err := json.Unmarshal(data, &step); err != nil {
		return err
	}
	*g = generatedInstruction(step)
	return nil
}

// rawScalar renders a JSON string or number as plain text.
func rawScalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

type generatedRecipe struct {
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Ingredients  []generatedIngredient  `json:"ingredients"`
	Instructions []generatedInstruction `json:"instructions"`
	CookingTime  struct {
		Prep flexInt `json:"prep"`
		Cook flexInt `json:"cook"`
	} `json:"cookingTime"`
	Difficulty      string                  `json:"difficulty"`
	Servings        flexInt                 `json:"servings"`
	Cuisine         string                  `json:"cuisine"`
	MealType        json.RawMessage         `json:"mealType"`
	DietaryInfo     models.DietaryInfo      `json:"dietaryInfo"`
	NutritionalInfo *models.NutritionalInfo `json:"nutritionalInfo"`
	Tags            []string                `json:"tags"`
}

// stripCodeFences removes Markdown fences around a model reply.
func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))

	// Prose around the object.
	if !strings.HasPrefix(text, "{") {
		start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
		if start >= 0 && end > start {
			text = text[start : end+1]
		}
	}
	return text
}

// ParseRecipeResponse turns a model reply into a recipe. Replies that are not
// JSON, or that lack title, ingredients or instructions as arrays, produce a
// placeholder recipe carrying the raw text as its only step.
func ParseRecipeResponse(raw string, req *types.GenerateRecipeRequest) (*models.Recipe, types.GenerationStatus) {
	text := stripCodeFences(raw)

	var shape map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &shape); err != nil {
		return fallbackRecipe(raw, req), types.GenerationFallback
	}
	if !isJSONArray(shape["ingredients"]) || !isJSONArray(shape["instructions"]) {
		return fallbackRecipe(raw, req), types.GenerationFallback
	}

	var gen generatedRecipe
	if err := json.Unmarshal([]byte(text), &gen); err != nil {
		return fallbackRecipe(raw, req), types.GenerationFallback
	}
	gen.Title = strings.TrimSpace(gen.Title)
	if gen.Title == "" || len(gen.Ingredients) == 0 || len(gen.Instructions) == 0 {
		return fallbackRecipe(raw, req), types.GenerationFallback
	}

	recipe := &models.Recipe{
		Title:            truncate(gen.Title, 100),
		Description:      gen.Description,
		InputIngredients: models.StringList(req.Ingredients),
		Difficulty:       gen.Difficulty,
		Servings:         int(gen.Servings),
		Cuisine:          gen.Cuisine,
		MealType:         parseMealTypes(gen.MealType),
		DietaryInfo:      gen.DietaryInfo,
		NutritionalInfo:  gen.NutritionalInfo,
		Tags:             models.StringList(gen.Tags),
		GeneratedBy:      models.GeneratedByAI,
		IsPublic:         true,
	}
	recipe.CookingTime.Prep = max(int(gen.CookingTime.Prep), 0)
	recipe.CookingTime.Cook = max(int(gen.CookingTime.Cook), 0)
	recipe.CookingTime.Total = recipe.CookingTime.Prep + recipe.CookingTime.Cook

	for _, ing := range gen.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			continue
		}
		recipe.Ingredients = append(recipe.Ingredients, models.Ingredient(ing))
	}
	for i, step := range gen.Instructions {
		inst := models.Instruction{StepNumber: int(step.StepNumber), Description: step.Description}
		if inst.StepNumber <= 0 {
			inst.StepNumber = i + 1
		}
		if step.Duration != nil && *step.Duration > 0 {
			d := int(*step.Duration)
			inst.Duration = &d
		}
		recipe.Instructions = append(recipe.Instructions, inst)
	}
	if len(recipe.Ingredients) == 0 {
		return fallbackRecipe(raw, req), types.GenerationFallback
	}

	applyRequestDefaults(recipe, req)
	return recipe, types.GenerationParsed
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}

// parseMealTypes accepts ["dinner"] or "dinner" and drops unknown values.
func parseMealTypes(raw json.RawMessage) models.StringList {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		list = []string{single}
	}

	out := models.StringList{}
	for _, mt := range list {
		mt = strings.ToLower(strings.TrimSpace(mt))
		if models.IsMealType(mt) {
			out = append(out, mt)
		}
	}
	return out
}

// applyRequestDefaults fills whatever the model left out or got wrong from
// the request.
func applyRequestDefaults(r *models.Recipe, req *types.GenerateRecipeRequest) {
	switch r.Difficulty = strings.ToLower(r.Difficulty); r.Difficulty {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		r.Difficulty = req.Difficulty
		if r.Difficulty == "" {
			r.Difficulty = models.DifficultyMedium
		}
	}

	if r.Servings < models.MinServings || r.Servings > models.MaxServings {
		r.Servings = req.Servings
	}
	if r.Servings < models.MinServings || r.Servings > models.MaxServings {
		r.Servings = 4
	}

	if len(r.MealType) == 0 {
		if req.MealType != "" {
			r.MealType = models.StringList{req.MealType}
		} else {
			r.MealType = models.StringList{"dinner"}
		}
	}
	if r.Cuisine == "" {
		r.Cuisine = req.Cuisine
	}
	if strings.TrimSpace(r.Description) == "" {
		r.Description = truncate("A recipe made with "+strings.Join(req.Ingredients, ", ")+".", 500)
	}
	if len(r.Tags) == 0 {
		r.Tags = models.StringList{"ai-generated"}
	}

	for _, restriction := range req.DietaryRestrictions {
		switch strings.ToLower(strings.NewReplacer("-", "", " ", "", "_", "").Replace(restriction)) {
		case "vegetarian":
			r.DietaryInfo.IsVegetarian = true
		case "vegan":
			r.DietaryInfo.IsVegan = true
			r.DietaryInfo.IsVegetarian = true
			r.DietaryInfo.IsDairyFree = true
		case "glutenfree":
			r.DietaryInfo.IsGlutenFree = true
		case "dairyfree":
			r.DietaryInfo.IsDairyFree = true
		case "nutfree":
			r.DietaryInfo.IsNutFree = true
		case "lowcarb", "keto":
			r.DietaryInfo.IsLowCarb = true
		}
	}
}

// fallbackRecipe wraps an unusable reply so the caller still gets a recipe.
func fallbackRecipe(raw string, req *types.GenerateRecipeRequest) *models.Recipe {
	ingredients := make([]models.Ingredient, 0, len(req.Ingredients))
	for _, name := range req.Ingredients {
		ingredients = append(ingredients, models.Ingredient{Name: name, Amount: "to taste"})
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		text = "No instructions were returned. Combine the ingredients and cook to your liking."
	}

	recipe := &models.Recipe{
		Title:            truncate("Recipe with "+strings.Join(req.Ingredients, ", "), 100),
		Description:      "Generated recipe could not be fully structured; the original response is included as a single step.",
		Ingredients:      ingredients,
		InputIngredients: models.StringList(req.Ingredients),
		Instructions:     []models.Instruction{{StepNumber: 1, Description: text}},
		Tags:             models.StringList{"ai-generated"},
		GeneratedBy:      models.GeneratedByAI,
		IsPublic:         true,
	}
	applyRequestDefaults(recipe, req)
	return recipe
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(string(runes)) > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
