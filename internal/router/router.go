package router

import (
	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
)

// SetupRouter configures the application routes. writeLimit may be nil
// when no rate limiter is available.
func SetupRouter(
	authHandler *api.AuthHandler,
	recipeHandler *api.RecipeHandler,
	catalogHandler *api.CatalogHandler,
	userHandler *api.UserHandler,
	validator middleware.TokenValidator,
	writeLimit gin.HandlerFunc,
	allowedOrigins []string,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	if writeLimit == nil {
		writeLimit = func(c *gin.Context) { c.Next() }
	}

	v1 := router.Group("/api/v1")

	authHandler.RegisterRoutes(v1)

	// Reference data needs no auth at all.
	catalogHandler.RegisterRoutes(v1)

	// Reads resolve viewer-dependent flags when a token is present but
	// stay open to anonymous callers.
	public := v1.Group("")
	public.Use(middleware.OptionalAuthMiddleware(validator))
	{
		recipeHandler.RegisterPublicRoutes(public)
		userHandler.RegisterPublicRoutes(public)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		recipeHandler.RegisterProtectedRoutes(protected, writeLimit)
		userHandler.RegisterProtectedRoutes(protected)
	}

	return router
}
