package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/service"
)

// respondError maps service errors to client statuses. Anything outside
// the validation taxonomy is a 500 with a generic body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCookingTime),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrDuplicateRecipeName),
		errors.Is(err, service.ErrDuplicateIngredient),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrNotInList),
		errors.Is(err, service.ErrNotSubscribed),
		errors.Is(err, service.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[api] internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// viewerID returns the authenticated caller's id, or nil for anonymous
// requests that passed through the optional-auth middleware.
func viewerID(c *gin.Context) *uuid.UUID {
	v, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// mustUserID returns the authenticated caller's id or writes a 401.
func mustUserID(c *gin.Context) (uuid.UUID, bool) {
	v := viewerID(c)
	if v == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	return *v, true
}

// pathID parses the :id path parameter as a UUID or writes a 400.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
