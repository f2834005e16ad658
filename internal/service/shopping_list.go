package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// DocumentRenderer renders a title and ordered lines into a paginated
// binary document.
type DocumentRenderer interface {
	Render(title string, lines []string) ([]byte, error)
}

// DocumentCache stores rendered documents by key until invalidated or
// expired.
type DocumentCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisDocumentCache backs DocumentCache with redis.
type RedisDocumentCache struct {
	client *redis.Client
}

func NewRedisDocumentCache(client *redis.Client) *RedisDocumentCache {
	return &RedisDocumentCache{client: client}
}

func (c *RedisDocumentCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisDocumentCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisDocumentCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// IngredientEntry is one flattened (ingredient, amount) row from a recipe
// in the cart.
type IngredientEntry struct {
	Name   string
	Unit   string
	Amount float64
}

// ShoppingItem is one aggregated line of the shopping list.
type ShoppingItem struct {
	Name   string
	Unit   string
	Amount float64
}

// AggregateEntries folds the flattened entries into per-name totals in
// first-seen order. The key is the display name: two ingredient records
// sharing a name merge, and the unit of the first occurrence wins even if
// a later one disagrees.
func AggregateEntries(entries []IngredientEntry) []ShoppingItem {
	index := make(map[string]int, len(entries))
	items := make([]ShoppingItem, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Name]; ok {
			items[i].Amount += e.Amount
			continue
		}
		index[e.Name] = len(items)
		items = append(items, ShoppingItem{Name: e.Name, Unit: e.Unit, Amount: e.Amount})
	}
	return items
}

// FormatItems renders the numbered line per aggregated entry.
func FormatItems(items []ShoppingItem) []string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		amount := strconv.FormatFloat(item.Amount, 'f', -1, 64)
		lines = append(lines, fmt.Sprintf("%d. %s(%s) - %s", i+1, item.Name, item.Unit, amount))
	}
	return lines
}

const shoppingListTitle = "FOODGRAM SHOPPING LIST"

// ShoppingListService collapses a user's cart into an aggregated
// shopping list and renders it as a document. Rendered documents are
// cached in redis until the cart changes.
type ShoppingListService struct {
	db       *gorm.DB
	renderer DocumentRenderer
	cache    DocumentCache
	cacheTTL time.Duration
}

// NewShoppingListService creates the service. cache may be nil to disable
// caching.
func NewShoppingListService(db *gorm.DB, renderer DocumentRenderer, cache DocumentCache) *ShoppingListService {
	return &ShoppingListService{
		db:       db,
		renderer: renderer,
		cache:    cache,
		cacheTTL: 15 * time.Minute,
	}
}

// Build collects every ingredient association across the recipes in the
// user's cart and aggregates them, ordered by cart insertion then by
// position within each recipe.
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID) ([]ShoppingItem, error) {
	var entries []IngredientEntry
	err := s.db.WithContext(ctx).Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, recipe_ingredients.amount AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Order("shopping_cart_entries.created_at, recipe_ingredients.created_at").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return AggregateEntries(entries), nil
}

// RenderDocument returns the shopping list as rendered document bytes,
// from cache when the cart has not changed since the last render.
func (s *ShoppingListService) RenderDocument(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, s.cacheKey(userID))
		if err != nil {
			log.Printf("[ShoppingList] cache read failed: %v", err)
		} else if ok {
			return cached, nil
		}
	}

	items, err := s.Build(ctx, userID)
	if err != nil {
		return nil, err
	}
	doc, err := s.renderer.Render(shoppingListTitle, FormatItems(items))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cacheKey(userID), doc, s.cacheTTL); err != nil {
			log.Printf("[ShoppingList] cache write failed: %v", err)
		}
	}
	return doc, nil
}

// InvalidateCache drops the cached document after a cart mutation.
func (s *ShoppingListService) InvalidateCache(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey(userID)); err != nil {
		log.Printf("[ShoppingList] cache invalidation failed: %v", err)
	}
}

// InvalidateRecipeHolders drops the cached document of every user whose
// cart holds the recipe. Updating or deleting a recipe changes those
// users' lists too; call it while the cart rows still exist.
func (s *ShoppingListService) InvalidateRecipeHolders(ctx context.Context, recipeID uuid.UUID) {
	if s.cache == nil {
		return
	}
	var userIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.ShoppingCartEntry{}).
		Where("recipe_id = ?", recipeID).
		Distinct().
		Pluck("user_id", &userIDs).Error
	if err != nil {
		log.Printf("[ShoppingList] cart owner lookup failed: %v", err)
		return
	}
	for _, id := range userIDs {
		s.InvalidateCache(ctx, id)
	}
}

func (s *ShoppingListService) cacheKey(userID uuid.UUID) string {
	return "shopping_list:" + userID.String()
}
