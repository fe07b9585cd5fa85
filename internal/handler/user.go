package handler

import (
	"net/http"

	"github.com/contactbook/backend/internal/constants"
	"github.com/contactbook/backend/internal/dto"
	apperrors "github.com/contactbook/backend/internal/errors"
	"github.com/contactbook/backend/internal/model"
	"github.com/contactbook/backend/internal/service"
	"github.com/contactbook/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxAvatarSize = 5 << 20 // 5 MiB

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Current returns the authenticated user's profile
func (h *UserHandler) Current(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateAvatar replaces the user's avatar with an uploaded image
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Missing avatar file", err.Error()))
		return
	}
	if fileHeader.Size > maxAvatarSize {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Avatar file too large", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Unreadable avatar file", err.Error()))
		return
	}
	defer file.Close()

	updated, err := h.userService.UpdateAvatar(c.Request.Context(), user, file)
	if err != nil {
		logger.GetLogger().Error("Avatar update failed",
			zap.String("email", user.Email),
			zap.Error(err))
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Failed to update avatar", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(updated))
}

// currentUser pulls the authenticated user placed in the context by the JWT
// middleware. A missing user means the route was wired without RequireAuth.
func currentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(constants.GinKeyUser)
	if !exists {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		c.Abort()
		return nil, false
	}
	user, ok := value.(*model.User)
	if !ok {
		logger.GetLogger().Error("Unexpected user type in context")
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		c.Abort()
		return nil, false
	}
	return user, true
}
