package appcontext

import (
	"github.com/minio/minio-go/v7"
	"github.com/silvioheinze/isr-field-sub000/internal/auth"
	"github.com/silvioheinze/isr-field-sub000/internal/config"
	"github.com/silvioheinze/isr-field-sub000/internal/mailer"
	"github.com/silvioheinze/isr-field-sub000/internal/queue"
	"github.com/silvioheinze/isr-field-sub000/internal/repository"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// Mailer handles email-sending functions.
	Mailer mailer.Client

	// JWTService manages JWT operations for authentication such as generate, verify, refresh token.
	JWTService auth.JWTInterface

	// Queue dispatches background export jobs. Nil when RabbitMQ is not
	// configured; export requests then fail fast.
	Queue *queue.RabbitMQ

	S3 *minio.Client
}
