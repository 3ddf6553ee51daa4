package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/pageza/recipe-ai/backend/config"
	"github.com/pageza/recipe-ai/backend/internal/database"
	"github.com/pageza/recipe-ai/backend/internal/logging"
)

func main() {
	cmd := &cli.Command{
		Name:  "migrate",
		Usage: "manage the recipe database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "database connection string",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "create or update tables to match the models",
				Action: withDB(up),
			},
			{
				Name:  "reset",
				Usage: "drop every table and migrate again (refused in production)",
				Action: withDB(func(ctx context.Context, db *gorm.DB, log logrus.FieldLogger) error {
					if config.GetEnvironment().IsProduction() {
						return errors.New("refusing to reset a production database")
					}
					models := database.Models()
					for i := len(models) - 1; i >= 0; i-- {
						if err := db.Migrator().DropTable(models[i]); err != nil {
							return errors.Wrap(err, "failed to drop table")
						}
					}
					log.Info("dropped all tables")
					return up(ctx, db, log)
				}),
			},
		},
		DefaultCommand: "up",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

type dbAction func(ctx context.Context, db *gorm.DB, log logrus.FieldLogger) error

func withDB(action dbAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		log := logging.New("info", false)

		dsn := cmd.String("database-url")
		if dsn == "" {
			return errors.New("DATABASE_URL is not set")
		}

		db, err := database.New(ctx, dsn, log)
		if err != nil {
			return err
		}
		defer database.Close(db)

		return action(ctx, db, log)
	}
}

func up(_ context.Context, db *gorm.DB, log logrus.FieldLogger) error {
	if err := database.RunMigrations(db, log); err != nil {
		return err
	}
	log.Info("migrations complete")
	return nil
}
