package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/service"
)

// UserHandler serves user profiles and the subscription endpoints.
type UserHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewUserHandler(subscriptionService *service.SubscriptionService) *UserHandler {
	return &UserHandler{subscriptionService: subscriptionService}
}

// RegisterPublicRoutes registers profile reads; the group should carry
// optional auth so is_subscribed resolves for logged-in callers.
func (h *UserHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/users/:id", h.GetUser)
}

func (h *UserHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/me", h.Me)
		users.GET("/subscriptions", h.ListSubscriptions)
		users.POST("/:id/subscribe", h.Subscribe)
		users.DELETE("/:id/subscribe", h.Unsubscribe)
	}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	profile, err := h.subscriptionService.Profile(c.Request.Context(), viewerID(c), id, intQuery(c, "recipes_limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	profile, err := h.subscriptionService.Profile(c.Request.Context(), &userID, userID, intQuery(c, "recipes_limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	subs, err := h.subscriptionService.List(
		c.Request.Context(),
		userID,
		intQuery(c, "limit"),
		intQuery(c, "offset"),
		intQuery(c, "recipes_limit"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(subs), "results": subs})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	profile, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, id, intQuery(c, "recipes_limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// intQuery parses an optional non-negative integer query parameter;
// malformed values fall back to zero.
func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
