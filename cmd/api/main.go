package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	appcontext "github.com/silvioheinze/isr-field-sub000/internal/app_context"
	"github.com/silvioheinze/isr-field-sub000/internal/auth"
	"github.com/silvioheinze/isr-field-sub000/internal/config"
	"github.com/silvioheinze/isr-field-sub000/internal/controller"
	"github.com/silvioheinze/isr-field-sub000/internal/database"
	"github.com/silvioheinze/isr-field-sub000/internal/env"
	"github.com/silvioheinze/isr-field-sub000/internal/mailer"
	"github.com/silvioheinze/isr-field-sub000/internal/middleware"
	"github.com/silvioheinze/isr-field-sub000/internal/queue"
	ratelimiter "github.com/silvioheinze/isr-field-sub000/internal/rate_limiter"
	"github.com/silvioheinze/isr-field-sub000/internal/repository"
	"github.com/silvioheinze/isr-field-sub000/internal/route"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"go.uber.org/zap"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func newMailer(cfg config.Config, logger *zap.SugaredLogger) mailer.Client {
	if cfg.Mail.PROVIDER == "gmail" {
		return mailer.NewGmailMailer(cfg.Mail.GMAIL.USERNAME, cfg.Mail.GMAIL.PASSWORD, logger)
	}
	return mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	logger.Debugf("Configuration: %+v \n", cfg)

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

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("strNotEmpty", util.StrNotEmpty); err != nil {
			return
		}
		if err = v.RegisterValidation("cmin", util.CustomMin); err != nil {
			return
		}
		if err = v.RegisterValidation("cmax", util.CustomMax); err != nil {
			return
		}
	}

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	mail := newMailer(cfg, logger)
	jwtService := auth.NewJwt(cfg.Auth, logger)
	repo := repository.NewRepository(db, logger, jwtService, s3)

	// The api keeps running without RabbitMQ; export requests then fail
	// fast instead of blocking startup.
	rabbitMQ, err := queue.NewRabbitMQ(cfg.Queue.URL)
	if err != nil {
		logger.Errorf("RabbitMQ unavailable, ZIP exports disabled: %v", err)
		rabbitMQ = nil
	} else {
		defer func() {
			if err := rabbitMQ.Close(); err != nil {
				logger.Errorf("Failed to close RabbitMQ connection: %v", err)
			}
		}()
	}

	app := appcontext.Application{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mail,
		JWTService: jwtService,
		Queue:      rabbitMQ,
		S3:         s3,
	}

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.ENV == "production" {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept"}
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.RateLimitMiddleware)

	_controller := controller.NewController(&app)

	r.GET("/", _controller.Index.Index)

	rApi := r.Group("/api")

	route.V1_Auth(rApi, _controller.Auth)
	route.V1_Me(rApi, _controller.User, _middleware)
	route.V1_Users(rApi, _controller.User, _middleware)
	route.V1_Datasets(rApi, _controller, _middleware)
	route.V1_Typologies(rApi, _controller.Typology, _middleware)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panic("Error running server: %v \n", err)
	}
}
