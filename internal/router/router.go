package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/recipe-ai/backend/config"
	"github.com/pageza/recipe-ai/backend/internal/api"
	"github.com/pageza/recipe-ai/backend/internal/database"
	"github.com/pageza/recipe-ai/backend/internal/middleware"
	"github.com/pageza/recipe-ai/backend/internal/service"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

const generatePath = "/api/recipes/generate"

// Dependencies are the collaborators the router wires into handlers.
// Avatars may be nil when no bucket is configured.
type Dependencies struct {
	Config         *config.Config
	Logger         logrus.FieldLogger
	DB             *gorm.DB
	AuthService    service.IAuthService
	RecipeService  service.IRecipeService
	UserService    service.IUserService
	Generator      service.IGenerationService
	Avatars        service.IAvatarStore
	RateLimitStore middleware.RateLimitStore
}

// SetupRouter configures the middleware pipeline and the application routes.
func SetupRouter(deps *Dependencies) *gin.Engine {
	cfg := deps.Config
	types.RegisterValidation()

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
		middleware.Metrics(),
		middleware.ErrorHandler(cfg.Environment.IsProduction()),
		middleware.Recovery(),
		middleware.CORS(cfg.FrontendURL),
		middleware.BodyLimit(middleware.DefaultBodyLimit),
		middleware.Timeout(middleware.TimeoutConfig{
			Default: cfg.RequestTimeout,
			Routes:  map[string]time.Duration{generatePath: cfg.AIRequestTimeout},
		}),
		middleware.Sanitize(),
		middleware.ContentType(),
		middleware.NewRateLimiter(deps.RateLimitStore, middleware.GeneralPolicy).RateLimitMiddleware(),
	)
	router.NoRoute(middleware.NotFound())

	health := api.NewHealthHandler(
		func(ctx context.Context) error { return database.HealthCheck(ctx, deps.DB) },
		deps.Generator.Ping,
		string(cfg.Environment),
	)
	health.RegisterRoutes(&router.RouterGroup)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authLimiter := middleware.NewRateLimiter(deps.RateLimitStore, middleware.AuthPolicy).RateLimitMiddleware()
	aiLimiter := middleware.NewRateLimiter(deps.RateLimitStore, middleware.AIPolicy).RateLimitMiddleware()

	v1 := router.Group("/api")
	api.NewAuthHandler(deps.AuthService, deps.Avatars, authLimiter).RegisterRoutes(v1)
	api.NewRecipeHandler(deps.RecipeService, deps.Generator, deps.AuthService, cfg.MaxIngredients, aiLimiter).RegisterRoutes(v1)
	api.NewUserHandler(deps.UserService, deps.AuthService).RegisterRoutes(v1)

	return router
}
