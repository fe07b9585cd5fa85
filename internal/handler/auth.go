package handler

import (
	"fmt"
	"net/http"

	"github.com/contactbook/backend/config"
	"github.com/contactbook/backend/internal/constants"
	"github.com/contactbook/backend/internal/dto"
	apperrors "github.com/contactbook/backend/internal/errors"
	"github.com/contactbook/backend/internal/middleware"
	"github.com/contactbook/backend/internal/service"
	"github.com/contactbook/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userService *service.UserService
	appConfig   config.AppConfig
}

func NewAuthHandler(userService *service.UserService, appConfig config.AppConfig) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		appConfig:   appConfig,
	}
}

// Signup registers a new account and queues the confirmation email
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", bindingErrors(err)))
		return
	}

	user, err := h.userService.Signup(c.Request.Context(), &req, h.baseURL(c))
	if err != nil {
		logger.GetLogger().Warn("Signup failed",
			zap.String("email", req.Email),
			zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Signup failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusCreated, dto.SignupResponse{
		User:   dto.NewUserResponse(user),
		Detail: "User successfully created. Check your email for confirmation.",
	})
}

// Login exchanges credentials for an access/refresh token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", bindingErrors(err)))
		return
	}

	tokens, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.GetLogger().Warn("Login failed",
			zap.String("email", req.Email),
			zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Authentication failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// RefreshToken rotates the refresh token presented as a bearer credential
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	tokens, err := h.userService.Refresh(c.Request.Context(), token)
	if err != nil {
		logger.GetLogger().Warn("Token refresh failed", zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Token refresh failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// ConfirmEmail flips the account to confirmed using the emailed token
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	token := c.Param("token")

	already, err := h.userService.ConfirmEmail(c.Request.Context(), token)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Email confirmation failed", apperrors.GetErrorMessage(err)))
		return
	}

	if already {
		c.JSON(http.StatusOK, constants.BuildSuccessResponse("Your email is already confirmed"))
		return
	}
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Email confirmed"))
}

// RequestEmail re-sends the confirmation email
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	var req dto.RequestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", bindingErrors(err)))
		return
	}

	already, err := h.userService.RequestEmail(c.Request.Context(), req.Email, h.baseURL(c))
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Request failed", apperrors.GetErrorMessage(err)))
		return
	}

	if already {
		c.JSON(http.StatusOK, constants.BuildSuccessResponse("Your email is already confirmed"))
		return
	}
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Check your email for confirmation."))
}

// RequestResetPassword emails a password reset token
func (h *AuthHandler) RequestResetPassword(c *gin.Context) {
	var req dto.RequestResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", bindingErrors(err)))
		return
	}

	if err := h.userService.RequestResetPassword(c.Request.Context(), req.Email, h.baseURL(c)); err != nil {
		logger.GetLogger().Warn("Password reset request failed",
			zap.String("email", req.Email),
			zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Request failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Check your email for the reset link."))
}

// ResetPassword sets a new password using the emailed reset token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", bindingErrors(err)))
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		logger.GetLogger().Warn("Password reset failed",
			zap.String("email", req.Email),
			zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Password reset failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Password updated"))
}

// baseURL is the public root used to build links in outgoing emails
func (h *AuthHandler) baseURL(c *gin.Context) string {
	if h.appConfig.BaseURL != "" {
		return h.appConfig.BaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/", scheme, c.Request.Host)
}
