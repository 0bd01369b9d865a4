package main

import (
	appcontext "github.com/SeakMengs/Signfy/internal/app_context"
	"github.com/SeakMengs/Signfy/internal/auth"
	"github.com/SeakMengs/Signfy/internal/config"
	"github.com/SeakMengs/Signfy/internal/controller"
	"github.com/SeakMengs/Signfy/internal/database"
	"github.com/SeakMengs/Signfy/internal/env"
	filestorage "github.com/SeakMengs/Signfy/internal/file_storage"
	"github.com/SeakMengs/Signfy/internal/mailer"
	"github.com/SeakMengs/Signfy/internal/middleware"
	ratelimiter "github.com/SeakMengs/Signfy/internal/rate_limiter"
	"github.com/SeakMengs/Signfy/internal/repository"
	"github.com/SeakMengs/Signfy/internal/route"
	"github.com/SeakMengs/Signfy/internal/signer"
	"github.com/SeakMengs/Signfy/internal/util"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	defer logger.Sync()
	logger.Debugf("Starting %s on port %s in %s mode", util.GetAppName(), cfg.Port, cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected")

	s3, err := filestorage.NewMinioClient(cfg.Minio)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}
	if s3 == nil {
		logger.Info("Signed-copy archive disabled")
	}

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := util.RegisterValidations(v); err != nil {
			logger.Panic(err)
		}
	}

	preview, err := signfy.NewPreviewRenderer(signfy.Config{FontMetadataPath: cfg.Signfy.FontMetadataPath})
	if err != nil {
		logger.Warnf("Signature preview disabled, run cmd/scan_font to generate %s: %v", cfg.Signfy.FontMetadataPath, err)
		preview = nil
	}

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	mail := mailer.New(cfg.Mail, cfg.IsProduction(), logger)
	jwtService := auth.NewJwt(cfg.Auth, logger)
	repo := repository.NewRepository(db, logger)
	app := appcontext.Application{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mail,
		JWTService: jwtService,
		S3:         s3,
		Signer:     signer.New(cfg.Signer, logger),
		Drags:      signfy.NewDragRegistry(),
		Preview:    preview,
	}

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.IsProduction() {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept"}
	corsConfig.ExposeHeaders = []string{"Retry-After"}
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.RateLimiterMiddleware)

	_controller := controller.NewController(&app)

	r.GET("/", _controller.Index.Index)

	rApi := r.Group("/api")

	route.V1_Documents(rApi, _controller.Document, _middleware)
	route.V1_Sessions(rApi, _controller, _middleware)
	route.V1_Signatures(rApi, _controller.File, _middleware)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panicf("Error running server: %v", err)
	}
}
