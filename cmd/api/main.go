package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/pageza/recipe-ai/backend/config"
	"github.com/pageza/recipe-ai/backend/internal/database"
	"github.com/pageza/recipe-ai/backend/internal/logging"
	"github.com/pageza/recipe-ai/backend/internal/middleware"
	"github.com/pageza/recipe-ai/backend/internal/router"
	"github.com/pageza/recipe-ai/backend/internal/server"
	"github.com/pageza/recipe-ai/backend/internal/service"
)

func main() {
	cmd := &cli.Command{
		Name:  "recipe-api",
		Usage: "serve the recipe API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "skip-migrations",
				Usage: "do not run schema migrations on startup",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "recipe-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, cfg.Environment.IsProduction())
	log.WithField("env", cfg.Environment).Info("starting recipe api")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	res := &resources{log: log}
	defer res.Close()
	defer recoverAndExit(log, cancel, res, os.Exit)

	db, err := database.New(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	res.add("database", func() error { return database.Close(db) })

	if !cmd.Bool("skip-migrations") {
		if err := database.RunMigrations(db, log); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, falling back to in-memory rate limiting")
			redisClient = nil
		} else {
			res.add("redis", redisClient.Close)
		}
	}
	store := middleware.NewRateLimitStore(redisClient, log)

	var completer service.Completer
	if cfg.AIConfigured() {
		completer = service.NewAzureCompleter(
			cfg.AzureOpenAIEndpoint,
			cfg.AzureOpenAIAPIKey,
			cfg.AzureOpenAIAPIVersion,
			cfg.AzureOpenAIDeployment,
			log,
		)
	} else {
		log.Warn("Azure OpenAI is not configured, recipe generation is disabled")
	}

	deps := &router.Dependencies{
		Config:         cfg,
		Logger:         log,
		DB:             db,
		AuthService:    service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiresIn),
		RecipeService:  service.NewRecipeService(db, cfg.MaxIngredients, cfg.DefaultServings),
		UserService:    service.NewUserService(db),
		Generator:      service.NewGenerationService(completer, cfg.DefaultServings, cfg.AIRequestTimeout, log),
		RateLimitStore: store,
	}

	s3cfg, err := config.NewS3Config(ctx, cfg)
	switch {
	case err != nil:
		log.WithError(err).Warn("avatar storage unavailable")
	case s3cfg == nil:
		log.Info("S3 bucket not configured, avatar uploads are disabled")
	default:
		deps.Avatars = service.NewAvatarService(s3cfg)
	}

	srv := server.New(cfg.Port, router.SetupRouter(deps), store, log)
	return srv.Run(ctx)
}

// resources closes what run opened, newest first, at most once.
type resources struct {
	log     logrus.FieldLogger
	names   []string
	closers []func() error
	once    sync.Once
}

func (r *resources) add(name string, fn func() error) {
	r.names = append(r.names, name)
	r.closers = append(r.closers, fn)
}

func (r *resources) Close() {
	r.once.Do(func() {
		for i := len(r.closers) - 1; i >= 0; i-- {
			if err := r.closers[i](); err != nil {
				r.log.WithError(err).WithField("resource", r.names[i]).Warn("failed to close")
			}
		}
	})
}

// recoverAndExit handles a panic outside request handling: log the stack,
// stop the server, close connections and exit non-zero.
func recoverAndExit(log logrus.FieldLogger, cancel context.CancelFunc, res *resources, exit func(int)) {
	r := recover()
	if r == nil {
		return
	}
	log.WithFields(logrus.Fields{
		"panic": r,
		"stack": string(debug.Stack()),
	}).Error("unrecovered panic")
	cancel()
	res.Close()
	exit(1)
}
