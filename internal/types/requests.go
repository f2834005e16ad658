package types

import "github.com/google/uuid"

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IngredientAmount references an ingredient with its quantity in a recipe
// payload.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount float64   `json:"amount" binding:"required"`
}

// RecipeInput is the candidate recipe payload for create and update. Tags
// and ingredients are the complete desired sets: updates replace the stored
// associations rather than merging.
type RecipeInput struct {
	Name        string             `json:"name" binding:"required"`
	Text        string             `json:"text" binding:"required"`
	Image       string             `json:"image"`
	CookingTime int                `json:"cooking_time" binding:"required"`
	TagIDs      []uuid.UUID        `json:"tags" binding:"required"`
	Ingredients []IngredientAmount `json:"ingredients" binding:"required"`
}

// RecipeFilter holds list-endpoint query parameters.
type RecipeFilter struct {
	Author   *uuid.UUID
	TagSlugs []string
	// Favorited and InCart apply only for an authenticated viewer.
	Favorited bool
	InCart    bool
	Limit     int
	Offset    int
}
