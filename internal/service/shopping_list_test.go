package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
)

func TestAggregateEntries(t *testing.T) {
	entries := []service.IngredientEntry{
		{Name: "Flour", Unit: "g", Amount: 200},
		{Name: "Milk", Unit: "ml", Amount: 500},
		{Name: "Flour", Unit: "g", Amount: 300},
	}

	items := service.AggregateEntries(entries)
	require.Len(t, items, 2)
	assert.Equal(t, service.ShoppingItem{Name: "Flour", Unit: "g", Amount: 500}, items[0])
	assert.Equal(t, service.ShoppingItem{Name: "Milk", Unit: "ml", Amount: 500}, items[1])
}

func TestAggregateEntriesFirstUnitWins(t *testing.T) {
	entries := []service.IngredientEntry{
		{Name: "Sugar", Unit: "g", Amount: 100},
		{Name: "Sugar", Unit: "kg", Amount: 1},
	}

	items := service.AggregateEntries(entries)
	require.Len(t, items, 1)
	assert.Equal(t, "g", items[0].Unit)
	assert.Equal(t, float64(101), items[0].Amount)
}

func TestFormatItems(t *testing.T) {
	lines := service.FormatItems([]service.ShoppingItem{
		{Name: "Flour", Unit: "g", Amount: 500},
		{Name: "Vanilla", Unit: "tsp", Amount: 0.5},
	})

	require.Len(t, lines, 2)
	assert.Equal(t, "1. Flour(g) - 500", lines[0])
	assert.Equal(t, "2. Vanilla(tsp) - 0.5", lines[1])
}

func TestFormatItemsEmpty(t *testing.T) {
	assert.Empty(t, service.FormatItems(nil))
}

func TestBuildShoppingList(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author@example.com", "author")
	tag := testhelpers.CreateTestTag(t, db, "dinner", "#00BB00", "dinner")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	milk := testhelpers.CreateTestIngredient(t, db, "milk", "ml")

	recipes := service.NewRecipeService(db, nil)
	pancakes, err := recipes.Create(ctx, author.ID, &types.RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 15,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: []types.IngredientAmount{
			{ID: flour.ID, Amount: 200},
			{ID: milk.ID, Amount: 300},
		},
	})
	require.NoError(t, err)
	bread, err := recipes.Create(ctx, author.ID, &types.RecipeInput{
		Name:        "Bread",
		Text:        "Knead and bake.",
		CookingTime: 90,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: []types.IngredientAmount{
			{ID: flour.ID, Amount: 500},
		},
	})
	require.NoError(t, err)

	shopper := testhelpers.CreateTestUser(t, db, "shopper@example.com", "shopper")
	_, err = recipes.AddToCart(ctx, shopper.ID, pancakes.ID)
	require.NoError(t, err)
	_, err = recipes.AddToCart(ctx, shopper.ID, bread.ID)
	require.NoError(t, err)

	lists := service.NewShoppingListService(db, nil, nil)
	items, err := lists.Build(ctx, shopper.ID)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, service.ShoppingItem{Name: "flour", Unit: "g", Amount: 700}, items[0])
	assert.Equal(t, service.ShoppingItem{Name: "milk", Unit: "ml", Amount: 300}, items[1])

	// Another user's cart stays empty.
	other := testhelpers.CreateTestUser(t, db, "other@example.com", "other")
	empty, err := lists.Build(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

type recordingRenderer struct {
	title string
	lines []string
	calls int
}

func (r *recordingRenderer) Render(title string, lines []string) ([]byte, error) {
	r.title = title
	r.lines = lines
	r.calls++
	return []byte("rendered:" + strings.Join(lines, "|")), nil
}

func TestRenderDocument(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author@example.com", "author")
	tag := testhelpers.CreateTestTag(t, db, "dinner", "#00BB00", "dinner")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")

	recipes := service.NewRecipeService(db, nil)
	bread, err := recipes.Create(ctx, author.ID, &types.RecipeInput{
		Name:        "Bread",
		Text:        "Knead and bake.",
		CookingTime: 90,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: []types.IngredientAmount{{ID: flour.ID, Amount: 500}},
	})
	require.NoError(t, err)

	shopper := testhelpers.CreateTestUser(t, db, "shopper@example.com", "shopper")
	_, err = recipes.AddToCart(ctx, shopper.ID, bread.ID)
	require.NoError(t, err)

	renderer := &recordingRenderer{}
	lists := service.NewShoppingListService(db, renderer, nil)

	doc, err := lists.RenderDocument(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, "rendered:1. flour(g) - 500", string(doc))
	assert.Equal(t, "FOODGRAM SHOPPING LIST", renderer.title)
}

func TestRenderDocumentUsesCache(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author@example.com", "author")
	tag := testhelpers.CreateTestTag(t, db, "dinner", "#00BB00", "dinner")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")

	recipes := service.NewRecipeService(db, nil)
	bread, err := recipes.Create(ctx, author.ID, &types.RecipeInput{
		Name:        "Bread",
		Text:        "Knead and bake.",
		CookingTime: 90,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: []types.IngredientAmount{{ID: flour.ID, Amount: 500}},
	})
	require.NoError(t, err)

	shopper := testhelpers.CreateTestUser(t, db, "shopper@example.com", "shopper")
	_, err = recipes.AddToCart(ctx, shopper.ID, bread.ID)
	require.NoError(t, err)

	renderer := &recordingRenderer{}
	cache := testhelpers.NewRecordingDocumentCache()
	lists := service.NewShoppingListService(db, renderer, cache)

	_, err = lists.RenderDocument(ctx, shopper.ID)
	require.NoError(t, err)
	_, err = lists.RenderDocument(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)

	lists.InvalidateCache(ctx, shopper.ID)
	_, err = lists.RenderDocument(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, renderer.calls)
}

func TestInvalidateRecipeHolders(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author@example.com", "author")
	tag := testhelpers.CreateTestTag(t, db, "dinner", "#00BB00", "dinner")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")

	recipes := service.NewRecipeService(db, nil)
	bread, err := recipes.Create(ctx, author.ID, &types.RecipeInput{
		Name:        "Bread",
		Text:        "Knead and bake.",
		CookingTime: 90,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: []types.IngredientAmount{{ID: flour.ID, Amount: 500}},
	})
	require.NoError(t, err)

	// Two users cart the recipe, a third does not.
	first := testhelpers.CreateTestUser(t, db, "first@example.com", "first")
	second := testhelpers.CreateTestUser(t, db, "second@example.com", "second")
	bystander := testhelpers.CreateTestUser(t, db, "bystander@example.com", "bystander")
	_, err = recipes.AddToCart(ctx, first.ID, bread.ID)
	require.NoError(t, err)
	_, err = recipes.AddToCart(ctx, second.ID, bread.ID)
	require.NoError(t, err)

	cache := testhelpers.NewRecordingDocumentCache()
	lists := service.NewShoppingListService(db, &recordingRenderer{}, cache)
	for _, u := range []uuid.UUID{first.ID, second.ID, bystander.ID} {
		_, err = lists.RenderDocument(ctx, u)
		require.NoError(t, err)
	}

	lists.InvalidateRecipeHolders(ctx, bread.ID)

	assert.False(t, cache.Cached("shopping_list:"+first.ID.String()))
	assert.False(t, cache.Cached("shopping_list:"+second.ID.String()))
	assert.True(t, cache.Cached("shopping_list:"+bystander.ID.String()))
	assert.Len(t, cache.Deleted(), 2)
}
