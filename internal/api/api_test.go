package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/pdf"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

// stubImageStore satisfies uploads without any S3 connectivity.
type stubImageStore struct{}

func (stubImageStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	return "https://cdn.example.com/recipe-images/test.png", nil
}

// setupTestServer assembles the full engine against an in-memory
// database, with a recording document cache in place of redis.
func setupTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	engine, db, _ := setupTestServerWithCache(t)
	return engine, db
}

func setupTestServerWithCache(t *testing.T) (*gin.Engine, *gorm.DB, *testhelpers.RecordingDocumentCache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	cache := testhelpers.NewRecordingDocumentCache()

	authService := service.NewAuthService(db, "test-secret")
	recipeService := service.NewRecipeService(db, stubImageStore{})
	catalogService := service.NewCatalogService(db)
	subscriptionService := service.NewSubscriptionService(db)
	shoppingListService := service.NewShoppingListService(db, pdf.NewRenderer(), cache)

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewRecipeHandler(recipeService, shoppingListService),
		api.NewCatalogHandler(catalogService),
		api.NewUserHandler(subscriptionService),
		authService,
		nil,
		[]string{"http://localhost:3000"},
	)
	return engine, db, cache
}

// registerUser creates an account through the API and returns its token.
func registerUser(t *testing.T, engine *gin.Engine, email, username string) string {
	t.Helper()

	body := `{
		"email": "` + email + `",
		"username": "` + username + `",
		"first_name": "Test",
		"last_name": "User",
		"password": "password123"
	}`
	w := doRequest(engine, "POST", "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func doRequest(engine *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}
