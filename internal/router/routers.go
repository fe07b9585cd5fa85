package router

import (
	"github.com/contactbook/backend/config"
	"github.com/contactbook/backend/internal/handler"
	"github.com/contactbook/backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	contactHandler *handler.ContactHandler
	healthHandler  *handler.HealthHandler

	jwtMw  *middleware.JWTMiddleware
	config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	user *handler.UserHandler,
	contact *handler.ContactHandler,
	health *handler.HealthHandler,
	jwtMw *middleware.JWTMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:    auth,
		userHandler:    user,
		contactHandler: contact,
		healthHandler:  health,
		jwtMw:          jwtMw,
		config:         cfg,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if !r.config.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.Check)

		r.authRoutes(api)
		r.userRoutes(api)
		r.contactRoutes(api)
	}

	return router
}

// defaultLimit is the shared budget for regular traffic
func (r *Router) defaultLimit() gin.HandlerFunc {
	return middleware.RateLimit(r.config.RateLimit.Request, r.config.RateLimit.Duration)
}
