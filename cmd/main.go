package main

import (
	"os"
	"os/signal"
	"syscall"

	configs "github.com/contactbook/backend/config"
	"github.com/contactbook/backend/internal/handler"
	"github.com/contactbook/backend/internal/middleware"
	"github.com/contactbook/backend/internal/repository"
	"github.com/contactbook/backend/internal/router"
	"github.com/contactbook/backend/internal/service"
	"github.com/contactbook/backend/pkg/avatar"
	"github.com/contactbook/backend/pkg/database"
	"github.com/contactbook/backend/pkg/logger"
	"github.com/contactbook/backend/pkg/mail"
	"github.com/contactbook/backend/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	redisClient := redis.NewClient(redis.Config{
		Host:         config.Redis.Host,
		Port:         config.Redis.Port,
		Password:     config.Redis.Password,
		DB:           config.Redis.Database,
		Enabled:      config.Redis.Enabled,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
	}, logger.GetLogger(), config.RedisAddress())
	defer redisClient.Close()

	logger.GetLogger().Info("Redis client initialized",
		zap.Bool("enabled", redisClient.IsEnabled()),
	)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)

	// Outbound collaborators. Mail and Cloudinary are optional at startup:
	// the service runs degraded without them.
	tokenService := service.NewTokenService(
		config.JWT.Secret,
		config.JWT.AccessTokenTTL,
		config.JWT.RefreshTokenTTL,
		config.JWT.EmailTokenTTL,
	)

	var sender mail.Sender
	if s, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     config.Mail.Host,
		Port:     config.Mail.Port,
		Username: config.Mail.Username,
		Password: config.Mail.Password,
		From:     config.Mail.From,
		FromName: config.Mail.FromName,
		UseSSL:   config.Mail.UseSSL,
	}); err != nil {
		logger.GetLogger().Warn("Mail sender unavailable, emails will be dropped", zap.Error(err))
	} else {
		sender = s
	}

	var uploader avatar.Uploader
	if config.Cloudinary.CloudName != "" {
		if u, err := avatar.NewCloudinaryUploader(avatar.CloudinaryConfig{
			CloudName: config.Cloudinary.CloudName,
			APIKey:    config.Cloudinary.APIKey,
			APISecret: config.Cloudinary.APISecret,
			Folder:    config.Cloudinary.Folder,
		}); err != nil {
			logger.GetLogger().Warn("Cloudinary unavailable, avatar uploads disabled", zap.Error(err))
		} else {
			uploader = u
		}
	}

	dispatcher := service.NewDispatcher(service.DispatcherConfig{
		QueueSize: config.Dispatcher.QueueSize,
		Workers:   config.Dispatcher.Workers,
	}, sender, tokenService, redisClient, config.App.Name)
	dispatcher.Start()
	defer dispatcher.Stop()

	// Services
	cacheService := service.NewCacheService(redisClient, config.Redis.CacheTTL)
	userService := service.NewUserService(userRepo, tokenService, avatar.NewGravatarResolver(250), uploader, dispatcher)
	contactService := service.NewContactService(contactRepo, cacheService)

	// Handlers
	authHandler := handler.NewAuthHandler(userService, config.App)
	userHandler := handler.NewUserHandler(userService)
	contactHandler := handler.NewContactHandler(contactService, cacheService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	jwtMiddleware := middleware.NewJWTMiddleware(tokenService, userRepo)

	r := router.NewRouter(
		authHandler,
		userHandler,
		contactHandler,
		healthHandler,
		jwtMiddleware,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.GetLogger().Info("Shutting down")
}
