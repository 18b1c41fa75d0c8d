package db

import (
	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/pkg/logger"
)

// Migrate runs database migrations. The is_trending and viral_score columns
// are part of the schema from day one; nothing probes for their existence at
// runtime.
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.Restaurant{},
		&model.TrendingDish{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
