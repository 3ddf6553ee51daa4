package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/recipe-ai/backend/internal/models"
)

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Recipe{},
		&models.Rating{},
		&models.RecipeSave{},
	}
}

// RunMigrations brings the schema up to date with the models.
func RunMigrations(db *gorm.DB, log logrus.FieldLogger) error {
	log.WithField("dialect", db.Dialector.Name()).Info("Running GORM auto-migration")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
