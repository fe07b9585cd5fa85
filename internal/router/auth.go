package router

import (
	"github.com/contactbook/backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (r *Router) authRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.Use(r.defaultLimit())
	{
		auth.POST("/signup", r.authHandler.Signup)
		auth.POST("/login", r.authHandler.Login)
		auth.GET("/refresh_token", r.authHandler.RefreshToken)
		auth.GET("/confirmed_email/:token", r.authHandler.ConfirmEmail)
		auth.POST("/request_email", r.authHandler.RequestEmail)
	}

	// Reset routes carry their own tight budgets so abuse of one endpoint
	// cannot lock legitimate users out of the other
	reset := api.Group("/auth")
	{
		reset.POST("/request_reset_password",
			middleware.RateLimit(r.config.RateLimit.ResetRequest, r.config.RateLimit.ResetDuration),
			r.authHandler.RequestResetPassword)
		reset.POST("/reset_password",
			middleware.RateLimit(r.config.RateLimit.ResetSubmit, r.config.RateLimit.ResetDuration),
			r.authHandler.ResetPassword)
	}
}
