package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/pageza/recipe-ai/backend/config"
	"github.com/pageza/recipe-ai/backend/internal/database"
	"github.com/pageza/recipe-ai/backend/internal/logging"
	"github.com/pageza/recipe-ai/backend/internal/service"
)

func main() {
	cmd := &cli.Command{
		Name:  "seed_recipes",
		Usage: "load public recipes from a YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "path to the seed file",
				Value:   "cmd/seed_recipes/recipes.yaml",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "seed_recipes: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.Environment.IsProduction())

	file, err := LoadSeedFile(cmd.String("file"))
	if err != nil {
		return err
	}

	db, err := database.New(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, log); err != nil {
		return err
	}

	seeder := &Seeder{
		auth:    service.NewAuthService(db, cfg.JWTSecret, time.Hour),
		recipes: service.NewRecipeService(db, cfg.MaxIngredients, cfg.DefaultServings),
		log:     log,
	}
	n, err := seeder.Seed(ctx, file)
	if err != nil {
		return err
	}
	log.Infof("seeded %d of %d recipes", n, len(file.Recipes))
	return nil
}
