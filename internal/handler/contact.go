package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/contactbook/backend/internal/constants"
	"github.com/contactbook/backend/internal/dto"
	apperrors "github.com/contactbook/backend/internal/errors"
	"github.com/contactbook/backend/internal/service"
	"github.com/contactbook/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ContactHandler struct {
	contactService *service.ContactService
	cache          *service.CacheService
}

func NewContactHandler(contactService *service.ContactService, cache *service.CacheService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		cache:          cache,
	}
}

// Create adds a contact owned by the authenticated user
func (h *ContactHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", bindingErrors(err)))
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), user.ID, &req)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Failed to create contact", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusCreated, dto.NewContactResponse(contact))
}

// GetAll returns one page of the user's contacts, served from cache when warm
func (h *ContactHandler) GetAll(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	limit := queryInt(c, "limit", 10)
	offset := queryInt(c, "offset", 0)

	key := h.cache.Key("list", user.ID, c.Request.URL.Query())
	if data := h.cache.Get(c.Request.Context(), key); data != nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	contacts, err := h.contactService.List(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Failed to list contacts", apperrors.GetErrorMessage(err)))
		return
	}

	h.respondCached(c, key, dto.NewContactResponseList(contacts))
}

// GetByID returns a single contact owned by the user
func (h *ContactHandler) GetByID(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	contactID, ok := pathID(c)
	if !ok {
		return
	}

	key := h.cache.Key("get:"+c.Param("id"), user.ID, nil)
	if data := h.cache.Get(c.Request.Context(), key); data != nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	contact, err := h.contactService.Get(c.Request.Context(), user.ID, contactID)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Failed to get contact", apperrors.GetErrorMessage(err)))
		return
	}

	h.respondCached(c, key, dto.NewContactResponse(contact))
}

// Update modifies the fields present in the request body
func (h *ContactHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	contactID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", bindingErrors(err)))
		return
	}

	contact, err := h.contactService.Update(c.Request.Context(), user.ID, contactID, &req)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Failed to update contact", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, dto.NewContactResponse(contact))
}

// Delete removes a contact and returns its last state
func (h *ContactHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	contactID, ok := pathID(c)
	if !ok {
		return
	}

	contact, err := h.contactService.Delete(c.Request.Context(), user.ID, contactID)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Failed to delete contact", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, dto.NewContactResponse(contact))
}

// Search filters the user's contacts by first name, last name and email
func (h *ContactHandler) Search(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	key := h.cache.Key("search", user.ID, c.Request.URL.Query())
	if data := h.cache.Get(c.Request.Context(), key); data != nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	contacts, err := h.contactService.Search(c.Request.Context(), user.ID,
		c.Query("first_name"), c.Query("last_name"), c.Query("email"))
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Search failed", apperrors.GetErrorMessage(err)))
		return
	}

	h.respondCached(c, key, dto.NewContactResponseList(contacts))
}

// UpcomingBirthdays lists contacts with a birthday in the coming week
func (h *ContactHandler) UpcomingBirthdays(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	days := queryInt(c, "days", 7)

	key := h.cache.Key("birthdays", user.ID, c.Request.URL.Query())
	if data := h.cache.Get(c.Request.Context(), key); data != nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	contacts, err := h.contactService.UpcomingBirthdays(c.Request.Context(), user.ID, days)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err),
			constants.BuildErrorResponse("Failed to list birthdays", apperrors.GetErrorMessage(err)))
		return
	}

	h.respondCached(c, key, dto.NewContactResponseList(contacts))
}

// respondCached writes the payload and stores its JSON form for later hits
func (h *ContactHandler) respondCached(c *gin.Context, key string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.GetLogger().Error("Failed to marshal response",
			zap.String("cache_key", key),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError,
			constants.BuildErrorResponse("Internal server error", nil))
		return
	}

	h.cache.Set(c.Request.Context(), key, data)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid contact id", nil))
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
