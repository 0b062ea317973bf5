package db

import (
	"fmt"

	"gestor-pelada/gestor/internal/logging"
	gormModels "gestor-pelada/gestor/internal/models/gorm"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenClientStore opens the local store for preferences and the saved
// session. driver is "sqlite" or "postgres".
func OpenClientStore(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported client store driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s client store: %w", driver, err)
	}

	if err := db.AutoMigrate(&gormModels.Preference{}, &gormModels.StoredSession{}); err != nil {
		return nil, fmt.Errorf("failed to migrate client store: %w", err)
	}

	logging.Info("Client store ready", "driver", driver)
	return db, nil
}
