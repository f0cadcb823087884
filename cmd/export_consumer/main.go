package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/silvioheinze/isr-field-sub000/internal/auth"
	"github.com/silvioheinze/isr-field-sub000/internal/config"
	"github.com/silvioheinze/isr-field-sub000/internal/database"
	"github.com/silvioheinze/isr-field-sub000/internal/env"
	"github.com/silvioheinze/isr-field-sub000/internal/exporter"
	"github.com/silvioheinze/isr-field-sub000/internal/mailer"
	"github.com/silvioheinze/isr-field-sub000/internal/queue"
	"github.com/silvioheinze/isr-field-sub000/internal/repository"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

const (
	MAX_WORKER = 3
)

func newMailer(cfg config.Config, logger *zap.SugaredLogger) mailer.Client {
	if cfg.Mail.PROVIDER == "gmail" {
		return mailer.NewGmailMailer(cfg.Mail.GMAIL.USERNAME, cfg.Mail.GMAIL.PASSWORD, logger)
	}
	return mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	s3, err := minio.New(cfg.Minio.ENDPOINT, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.ACCESS_KEY, cfg.Minio.SECRET_KEY, ""),
		Secure: cfg.Minio.USE_SSL,
	})
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}

	mail := newMailer(cfg, logger)
	jwtService := auth.NewJwt(cfg.Auth, logger)
	repo := repository.NewRepository(db, logger, jwtService, s3)

	app := queue.ExportConsumerContext{
		Config:     &cfg,
		Logger:     logger,
		Repository: repo,
		Exporter:   exporter.NewZipExporter(repo, s3, mail, cfg.Export, logger),
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.Queue.URL)
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	logger.Info("RabbitMQ connected \n")
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()

	ctx := context.Background()

	if err := rabbitMQ.ConsumeExportJob(ctx, exportJobHandler, MAX_WORKER, &app); err != nil {
		logger.Fatalf("Failed to consume export job: %v", err)
	}

	logger.Infof("Started consuming export job")

	// Block forever to keep the consumer running
	select {}
}

func exportJobHandler(ctx context.Context, jobPayload queue.ExportJobPayload, app *queue.ExportConsumerContext) (bool, error) {
	task, err := app.Repository.ExportTask.GetById(ctx, nil, jobPayload.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("export task not found: %s", jobPayload.TaskID)
		}

		return true, fmt.Errorf("failed to get export task: %w", err)
	}

	if task.IsTerminal() {
		// Duplicate delivery of an already finished task, nothing to do.
		return false, nil
	}

	if err := app.Exporter.Run(ctx, task.ID); err != nil {
		return true, fmt.Errorf("failed to run export task %s: %w", task.ID, err)
	}

	return true, nil
}
