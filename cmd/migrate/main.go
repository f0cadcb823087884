package main

import (
	"github.com/silvioheinze/isr-field-sub000/internal/config"
	"github.com/silvioheinze/isr-field-sub000/internal/database"
	"github.com/silvioheinze/isr-field-sub000/internal/env"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"go.uber.org/zap"
)

func init() {
	env.LoadEnv(".env")
}

func main() {
	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()
	cfg := config.GetConfig()

	logger.Infof("Database configuration: %+v", cfg.DB)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	db.Exec(`CREATE EXTENSION IF NOT EXISTS citext`)

	migrateErr := db.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.Dataset{},
		&model.DatasetField{},
		&model.Typology{},
		&model.TypologyEntry{},
		&model.Geometry{},
		&model.Entry{},
		&model.EntryFieldValue{},
		&model.EntryFile{},
		&model.MappingArea{},
		&model.DatasetUserMappingArea{},
		&model.DatasetGroupMappingArea{},
		&model.ExportTask{},
	)
	if migrateErr != nil {
		logger.Panic(migrateErr)
	}
}
