package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// RecipeService owns the validate-then-persist workflow for recipes, the
// read-side shaping with per-viewer membership flags, and the favorite and
// shopping-cart toggles.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

// NewRecipeService creates a RecipeService. images may be nil, in which
// case image payloads are stored as-is (useful for tests and URL inputs).
func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{db: db, images: images}
}

// Create validates and persists a new recipe with its tag and ingredient
// associations in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in *types.RecipeInput) (*types.RecipeResponse, error) {
	if err := s.validate(ctx, authorID, uuid.Nil, in); err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}
	if err := s.resolveIngredients(ctx, in.Ingredients); err != nil {
		return nil, err
	}
	imageURL, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		ImageURL:    imageURL,
		CookingTime: in.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return rebuildAssociations(tx, &recipe, tags, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID, &authorID)
}

// Update overwrites the recipe's scalar fields and replaces both
// association sets with the payload's sets. Only the author may update.
func (s *RecipeService) Update(ctx context.Context, actorID, recipeID uuid.UUID, in *types.RecipeInput) (*types.RecipeResponse, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, ErrForbidden
	}
	// Duplicate-name check runs against the incoming name, excluding the
	// recipe being updated.
	if err := s.validate(ctx, actorID, recipeID, in); err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}
	if err := s.resolveIngredients(ctx, in.Ingredients); err != nil {
		return nil, err
	}
	imageURL, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if imageURL != "" {
			updates["image_url"] = imageURL
		}
		if err := tx.Model(recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return rebuildAssociations(tx, recipe, tags, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID, &actorID)
}

// Delete removes the recipe together with its associations and any
// favorite or cart rows referencing it. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, actorID, recipeID uuid.UUID) error {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != actorID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
}

// Get returns the full read shape of one recipe for the given viewer
// (nil viewer means anonymous).
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID, viewer *uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe: %w", ErrNotFound)
		}
		return nil, err
	}
	return s.serialize(ctx, &recipe, viewer)
}

// List returns filtered recipes, newest first. Membership filters are
// ignored for anonymous viewers.
func (s *RecipeService) List(ctx context.Context, viewer *uuid.UUID, f *types.RecipeFilter) ([]*types.RecipeResponse, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC")

	if f.Author != nil {
		q = q.Where("recipes.author_id = ?", *f.Author)
	}
	if len(f.TagSlugs) > 0 {
		q = q.Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs).
			Distinct("recipes.*")
	}
	if viewer != nil && f.Favorited {
		q = q.Joins("JOIN favorites ON favorites.recipe_id = recipes.id AND favorites.user_id = ?", *viewer)
	}
	if viewer != nil && f.InCart {
		q = q.Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipes.id AND shopping_cart_entries.user_id = ?", *viewer)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}

	out := make([]*types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp, err := s.serialize(ctx, &recipes[i], viewer)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// AddFavorite creates the (user, recipe) favorite row. A concurrent
// duplicate surfaces as a unique-key violation and is reported the same as
// an existing row.
func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipe, error) {
	return s.addMembership(ctx, userID, recipeID, &models.Favorite{UserID: userID, RecipeID: recipeID}, "favorites")
}

func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeMembership(ctx, userID, recipeID, &models.Favorite{})
}

func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipe, error) {
	return s.addMembership(ctx, userID, recipeID, &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}, "shopping cart")
}

func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeMembership(ctx, userID, recipeID, &models.ShoppingCartEntry{})
}

func (s *RecipeService) addMembership(ctx context.Context, userID, recipeID uuid.UUID, row interface{}, listName string) (*types.ShortRecipe, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("recipe is already in %s: %w", listName, ErrAlreadyExists)
		}
		return nil, err
	}
	return &types.ShortRecipe{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}, nil
}

func (s *RecipeService) removeMembership(ctx context.Context, userID, recipeID uuid.UUID, model interface{}) error {
	if _, err := s.find(ctx, recipeID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotInList
	}
	return nil
}

// validate applies the Writer's rules in order, short-circuiting on the
// first failure: cooking time, duplicate (author, name), duplicate
// ingredient reference. Resolution of tag/ingredient ids happens after.
func (s *RecipeService) validate(ctx context.Context, authorID, exclude uuid.UUID, in *types.RecipeInput) error {
	if in.CookingTime < 1 {
		return ErrInvalidCookingTime
	}

	q := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ? AND name = ?", authorID, in.Name)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateRecipeName
	}

	seen := make(map[uuid.UUID]struct{}, len(in.Ingredients))
	for _, ia := range in.Ingredients {
		if _, dup := seen[ia.ID]; dup {
			return ErrDuplicateIngredient
		}
		seen[ia.ID] = struct{}{}
		if ia.Amount <= 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (s *RecipeService) resolveTags(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		var tag models.Tag
		if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("tag %s: %w", id, ErrNotFound)
			}
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *RecipeService) resolveIngredients(ctx context.Context, refs []types.IngredientAmount) error {
	for _, ia := range refs {
		var ingredient models.Ingredient
		if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", ia.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("ingredient %s: %w", ia.ID, ErrNotFound)
			}
			return err
		}
	}
	return nil
}

func (s *RecipeService) storeImage(ctx context.Context, payload string) (string, error) {
	if payload == "" || strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://") {
		return payload, nil
	}
	if s.images == nil {
		return payload, nil
	}
	data, contentType, err := DecodeBase64Image(payload)
	if err != nil {
		return "", err
	}
	return s.images.Store(ctx, data, contentType)
}

func (s *RecipeService) find(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe: %w", ErrNotFound)
		}
		return nil, err
	}
	return &recipe, nil
}

func rebuildAssociations(tx *gorm.DB, recipe *models.Recipe, tags []models.Tag, refs []types.IngredientAmount) error {
	if len(tags) > 0 {
		if err := tx.Model(recipe).Association("Tags").Append(&tags); err != nil {
			return err
		}
	}
	for _, ia := range refs {
		row := models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ia.ID,
			Amount:       ia.Amount,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *RecipeService) serialize(ctx context.Context, recipe *models.Recipe, viewer *uuid.UUID) (*types.RecipeResponse, error) {
	resp := &types.RecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		Tags:        make([]types.TagResponse, 0, len(recipe.Tags)),
		Ingredients: make([]types.RecipeIngredientResponse, 0, len(recipe.Ingredients)),
		Author: types.UserResponse{
			ID:        recipe.Author.ID,
			Email:     recipe.Author.Email,
			Username:  recipe.Author.Username,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
		},
	}
	for _, tag := range recipe.Tags {
		resp.Tags = append(resp.Tags, types.TagResponse{
			ID:    tag.ID,
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		})
	}
	for _, ri := range recipe.Ingredients {
		resp.Ingredients = append(resp.Ingredients, types.RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}

	if viewer == nil {
		return resp, nil
	}

	var err error
	resp.IsFavorited, err = s.pairExists(ctx, &models.Favorite{}, *viewer, recipe.ID)
	if err != nil {
		return nil, err
	}
	resp.IsInShoppingCart, err = s.pairExists(ctx, &models.ShoppingCartEntry{}, *viewer, recipe.ID)
	if err != nil {
		return nil, err
	}

	var follows int64
	err = s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", *viewer, recipe.AuthorID).
		Count(&follows).Error
	if err != nil {
		return nil, err
	}
	resp.Author.IsSubscribed = follows > 0

	return resp, nil
}

func (s *RecipeService) pairExists(ctx context.Context, model interface{}, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}
