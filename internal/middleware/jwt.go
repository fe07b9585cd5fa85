package middleware

import (
	"net/http"
	"strings"

	"github.com/contactbook/backend/internal/constants"
	"github.com/contactbook/backend/internal/repository"
	"github.com/contactbook/backend/internal/service"
	"github.com/contactbook/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type JWTMiddleware struct {
	tokens   *service.TokenService
	userRepo *repository.UserRepository
}

func NewJWTMiddleware(tokens *service.TokenService, userRepo *repository.UserRepository) *JWTMiddleware {
	return &JWTMiddleware{
		tokens:   tokens,
		userRepo: userRepo,
	}
}

// RequireAuth validates the bearer access token and loads the authenticated
// user into the request context under constants.GinKeyUser.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			logger.GetLogger().Warn("Missing or malformed Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			abortUnauthorized(c)
			return
		}

		email, err := m.tokens.DecodeAccessToken(token)
		if err != nil {
			logger.GetLogger().Warn("Access token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			abortUnauthorized(c)
			return
		}

		user, err := m.userRepo.GetByEmail(c.Request.Context(), email)
		if err != nil {
			logger.GetLogger().Warn("Token subject not found",
				zap.String("path", c.Request.URL.Path),
				zap.String("email", email),
				zap.Error(err))
			abortUnauthorized(c)
			return
		}

		c.Set(constants.GinKeyUser, user)
		c.Set(constants.GinKeyUserEmail, user.Email)
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
	c.Abort()
}
