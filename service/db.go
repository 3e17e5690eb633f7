package service

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"github.com/interacaodigitall-rgb/juridico/config"
	"github.com/interacaodigitall-rgb/juridico/model"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDB opens the sqlite database backing both contract layouts and the
// signature request table.
func OpenDB(cfg *config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Path, err)
	}

	slog.Info("database opened", "path", cfg.Path)
	return db, nil
}

// AutoMigrate provisions the schema for all record shapes. Store queries
// against an unprovisioned schema surface a SetupError pointing here.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.ContractRecord{},
		&model.LegacyContract{},
		&model.SignatureRequest{},
	)
}
