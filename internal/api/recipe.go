package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// RecipeHandler serves recipe CRUD, the favorite and shopping-cart
// toggles, and the shopping-list download.
type RecipeHandler struct {
	recipeService       *service.RecipeService
	shoppingListService *service.ShoppingListService
}

func NewRecipeHandler(recipeService *service.RecipeService, shoppingListService *service.ShoppingListService) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		shoppingListService: shoppingListService,
	}
}

// RegisterPublicRoutes registers the read endpoints. The group should
// carry optional auth so viewer flags resolve for logged-in callers.
func (h *RecipeHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.List)
		recipes.GET("/:id", h.Get)
	}
}

// RegisterProtectedRoutes registers the endpoints that require an
// authenticated caller. writeLimit guards recipe create/update traffic.
func (h *RecipeHandler) RegisterProtectedRoutes(router *gin.RouterGroup, writeLimit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.POST("", writeLimit, h.Create)
		recipes.PUT("/:id", writeLimit, h.Update)
		recipes.DELETE("/:id", h.Delete)
		recipes.POST("/:id/favorite", h.AddFavorite)
		recipes.DELETE("/:id/favorite", h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", h.RemoveFromCart)
		recipes.GET("/download_shopping_cart", h.DownloadShoppingCart)
	}
}

func (h *RecipeHandler) List(c *gin.Context) {
	filter, err := parseRecipeFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recipes, err := h.recipeService.List(c.Request.Context(), viewerID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(recipes), "results": recipes})
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	recipe, err := h.recipeService.Get(c.Request.Context(), id, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var in types.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recipe, err := h.recipeService.Create(c.Request.Context(), userID, &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) Update(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in types.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recipe, err := h.recipeService.Update(c.Request.Context(), userID, id, &in)
	if err != nil {
		respondError(c, err)
		return
	}
	// Changed amounts reshape the shopping list of everyone who carted
	// this recipe, not just the author.
	h.shoppingListService.InvalidateRecipeHolders(c.Request.Context(), id)
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	// The cart rows vanish with the recipe, so holder caches are dropped
	// first, while the rows can still be looked up. A failed delete only
	// costs those users a re-render.
	h.shoppingListService.InvalidateRecipeHolders(c.Request.Context(), id)
	if err := h.recipeService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	short, err := h.recipeService.AddFavorite(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.recipeService.RemoveFavorite(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	short, err := h.recipeService.AddToCart(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.shoppingListService.InvalidateCache(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.recipeService.RemoveFromCart(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	h.shoppingListService.InvalidateCache(c.Request.Context(), userID)
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	doc, err := h.shoppingListService.RenderDocument(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="shopping_list.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func parseRecipeFilter(c *gin.Context) (*types.RecipeFilter, error) {
	filter := &types.RecipeFilter{
		TagSlugs:  c.QueryArray("tags"),
		Favorited: c.Query("is_favorited") == "1",
		InCart:    c.Query("is_in_shopping_cart") == "1",
	}
	if raw := c.Query("author"); raw != "" {
		author, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		filter.Author = &author
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		filter.Offset = offset
	}
	return filter, nil
}
