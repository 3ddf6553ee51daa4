package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-ai/backend/config"
	"github.com/pageza/recipe-ai/backend/internal/middleware"
	"github.com/pageza/recipe-ai/backend/internal/router"
	"github.com/pageza/recipe-ai/backend/internal/service"
	"github.com/pageza/recipe-ai/backend/internal/testhelpers"
)

const generated = `Here you go!
{"title": "Tomato Basil Pasta", "description": "Summer pasta.",
 "ingredients": [{"name": "pasta", "amount": 200, "unit": "g"}, {"name": "tomato", "amount": "3", "unit": ""}],
 "instructions": [{"stepNumber": 1, "description": "Boil the pasta.", "duration": "10 minutes"}, {"description": "Toss with tomato."}],
 "cookingTime": {"prep": 5, "cook": 15}, "difficulty": "easy", "cuisine": "Italian", "mealType": ["dinner"],
 "dietaryInfo": {"isVegetarian": true}, "nutritionalInfo": {"calories": 420, "protein": 12, "carbs": 70, "fat": 8, "fiber": 5},
 "tags": ["pasta"]}`

func setupRouter(t *testing.T, chat *testhelpers.FakeChatServer) *gin.Engine {
	t.Helper()
	db := testhelpers.SetupPostgresDB(t)
	redisClient := testhelpers.SetupRedis(t)
	log := testhelpers.Logger()

	cfg := &config.Config{
		Environment:           config.Test,
		FrontendURL:           "http://localhost:3000",
		RequestTimeout:        10 * time.Second,
		AIRequestTimeout:      10 * time.Second,
		JWTSecret:             "integration-secret",
		JWTExpiresIn:          time.Hour,
		AzureOpenAIEndpoint:   chat.URL,
		AzureOpenAIAPIKey:     "test-key",
		AzureOpenAIAPIVersion: "2024-02-01",
		AzureOpenAIDeployment: "test-deployment",
		MaxIngredients:        20,
		DefaultServings:       4,
	}
	completer := service.NewAzureCompleter(cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIAPIKey,
		cfg.AzureOpenAIAPIVersion, cfg.AzureOpenAIDeployment, log)

	return router.SetupRouter(&router.Dependencies{
		Config:         cfg,
		Logger:         log,
		DB:             db,
		AuthService:    service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiresIn),
		RecipeService:  service.NewRecipeService(db, cfg.MaxIngredients, cfg.DefaultServings),
		UserService:    service.NewUserService(db),
		Generator:      service.NewGenerationService(completer, cfg.DefaultServings, cfg.AIRequestTimeout, log),
		RateLimitStore: middleware.NewRateLimitStore(redisClient, log),
	})
}

func call(t *testing.T, r http.Handler, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func dataOf(resp map[string]interface{}) map[string]interface{} {
	return resp["data"].(map[string]interface{})
}

func TestIntegrationRegisterGenerateSearchRate(t *testing.T) {
	chat := testhelpers.NewFakeChatServer(t, testhelpers.ChatReply{Content: generated})
	r := setupRouter(t, chat)

	code, resp := call(t, r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "Tester", "email": "Test@Example.com", "password": "password",
		"preferences": map[string]interface{}{"dietaryRestrictions": []string{"vegetarian"}},
	})
	require.Equal(t, http.StatusCreated, code, resp)
	assert.Equal(t, "test@example.com", dataOf(resp)["user"].(map[string]interface{})["email"])

	code, resp = call(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": "test@example.com", "password": "password",
	})
	require.Equal(t, http.StatusOK, code, resp)
	token := dataOf(resp)["token"].(string)

	code, resp = call(t, r, http.MethodPost, "/api/recipes/generate", token, map[string]interface{}{
		"ingredients": []string{"pasta", "tomato"}, "servings": 2,
	})
	require.Equal(t, http.StatusCreated, code, resp)
	data := dataOf(resp)
	assert.Equal(t, "parsed", data["generation"].(map[string]interface{})["status"])
	assert.Equal(t, true, data["saved"])
	recipe := data["recipe"].(map[string]interface{})
	recipeID := recipe["id"].(string)
	assert.EqualValues(t, 20, recipe["cookingTime"].(map[string]interface{})["total"])
	assert.Equal(t, 1, chat.Calls())

	code, resp = call(t, r, http.MethodPost, "/api/recipes/search-by-ingredients", "", map[string]interface{}{
		"ingredients": []string{"tomato", "basil"}, "minMatch": 1,
	})
	require.Equal(t, http.StatusOK, code, resp)
	found := dataOf(resp)["recipes"].([]interface{})
	require.Len(t, found, 1)
	assert.EqualValues(t, 1, found[0].(map[string]interface{})["matchCount"])

	code, resp = call(t, r, http.MethodPost, "/api/recipes/"+recipeID+"/rate", token, map[string]interface{}{"rating": 5})
	require.Equal(t, http.StatusOK, code, resp)
	code, resp = call(t, r, http.MethodPost, "/api/recipes/"+recipeID+"/rate", token, map[string]interface{}{"rating": 3})
	require.Equal(t, http.StatusOK, code, resp)
	assert.EqualValues(t, 3, dataOf(resp)["averageRating"])
	assert.EqualValues(t, 1, dataOf(resp)["totalRatings"])

	code, resp = call(t, r, http.MethodGet, "/api/recipes?vegetarian=true&cuisine=Italian", "", nil)
	require.Equal(t, http.StatusOK, code, resp)
	assert.EqualValues(t, 1, resp["pagination"].(map[string]interface{})["total"])
}

func TestIntegrationFallbackRecipe(t *testing.T) {
	chat := testhelpers.NewFakeChatServer(t, testhelpers.ChatReply{Content: "Sorry, I can only describe it: boil eggs and serve."})
	r := setupRouter(t, chat)

	code, resp := call(t, r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "Tester", "email": "fallback@example.com", "password": "password",
	})
	require.Equal(t, http.StatusCreated, code, resp)
	token := dataOf(resp)["token"].(string)

	code, resp = call(t, r, http.MethodPost, "/api/recipes/generate", token, map[string]interface{}{
		"ingredients": []string{"eggs"},
	})
	require.Equal(t, http.StatusCreated, code, resp)
	data := dataOf(resp)
	assert.Equal(t, "fallback", data["generation"].(map[string]interface{})["status"])
	assert.Equal(t, "Recipe with eggs", data["recipe"].(map[string]interface{})["title"])
}
