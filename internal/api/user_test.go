package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
)

func TestSubscriptionEndpoints(t *testing.T) {
	engine, db := setupTestServer(t)
	followerToken := registerUser(t, engine, "follower@example.com", "follower")
	registerUser(t, engine, "author@example.com", "author")

	var author models.User
	require.NoError(t, db.Where("email = ?", "author@example.com").First(&author).Error)
	authorID := author.ID.String()

	w := doRequest(engine, "POST", "/api/v1/users/"+authorID+"/subscribe", "", followerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var profile struct {
		ID           string `json:"id"`
		IsSubscribed bool   `json:"is_subscribed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, authorID, profile.ID)
	assert.True(t, profile.IsSubscribed)

	// Duplicate subscription is rejected.
	w = doRequest(engine, "POST", "/api/v1/users/"+authorID+"/subscribe", "", followerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, "GET", "/api/v1/users/subscriptions", "", followerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	w = doRequest(engine, "DELETE", "/api/v1/users/"+authorID+"/subscribe", "", followerToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(engine, "DELETE", "/api/v1/users/"+authorID+"/subscribe", "", followerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelfSubscribeRejected(t *testing.T) {
	engine, db := setupTestServer(t)
	token := registerUser(t, engine, "solo@example.com", "solo")

	var user models.User
	require.NoError(t, db.Where("email = ?", "solo@example.com").First(&user).Error)

	w := doRequest(engine, "POST", "/api/v1/users/"+user.ID.String()+"/subscribe", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeAndPublicProfile(t *testing.T) {
	engine, db := setupTestServer(t)
	token := registerUser(t, engine, "cook@example.com", "cook")

	w := doRequest(engine, "GET", "/api/v1/users/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "cook@example.com", me.Email)

	var user models.User
	require.NoError(t, db.Where("email = ?", "cook@example.com").First(&user).Error)

	// Public profile works anonymously.
	w = doRequest(engine, "GET", "/api/v1/users/"+user.ID.String(), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Username     string `json:"username"`
		IsSubscribed bool   `json:"is_subscribed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "cook", profile.Username)
	assert.False(t, profile.IsSubscribed)

	// Requests without tokens cannot see /users/me.
	w = doRequest(engine, "GET", "/api/v1/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	f := setupRecipeFixture(t)

	w := doRequest(f.engine, "GET", "/api/v1/tags", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var tags []struct {
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
	require.Len(t, tags, 1)
	assert.Equal(t, "dinner", tags[0].Slug)

	w = doRequest(f.engine, "GET", "/api/v1/ingredients?name=fl", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ingredients []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ingredients))
	require.Len(t, ingredients, 1)
	assert.Equal(t, "flour", ingredients[0].Name)

	w = doRequest(f.engine, "GET", "/api/v1/ingredients?name=zz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ingredients))
	assert.Empty(t, ingredients)
}
