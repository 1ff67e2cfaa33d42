package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeDetail(t *testing.T) {
	f := newFixture(t)
	owner := newIdentity("owner@example.com")
	fan := newIdentity("fan@example.com")

	in := recipeInput("Tiramisu")
	in.Category = strPtr("dessert")
	recipe := f.createRecipe(t, owner, in)

	_, err := f.interactions.ToggleLike(f.ctx, fan, recipe.ID)
	require.NoError(t, err)
	_, err = f.interactions.AddComment(f.ctx, fan, recipe.ID, "Heavenly")
	require.NoError(t, err)

	detail, err := f.queries.RecipeDetail(f.ctx, recipe.ID, fan)
	require.NoError(t, err)
	assert.Equal(t, "Tiramisu", detail.Recipe.Title)
	assert.Equal(t, []string{"2 eggs", "1 cup flour"}, detail.Ingredients)
	assert.Equal(t, []string{"Mix", "Bake"}, detail.Instructions)
	assert.Equal(t, "Desserts", detail.CategoryLabel)
	assert.Equal(t, LikeInfo{Count: 1, UserLiked: true}, detail.Likes)
	assert.Len(t, detail.Comments, 1)
	assert.Equal(t, int64(1), detail.CommentCount)
	assert.False(t, detail.IsOwner)

	detail, err = f.queries.RecipeDetail(f.ctx, recipe.ID, nil)
	require.NoError(t, err)
	assert.False(t, detail.Likes.UserLiked)

	detail, err = f.queries.RecipeDetail(f.ctx, recipe.ID, owner)
	require.NoError(t, err)
	assert.True(t, detail.IsOwner)
}

func TestRecipeDetailDraftVisibility(t *testing.T) {
	f := newFixture(t)
	owner := newIdentity("owner@example.com")
	other := newIdentity("other@example.com")

	in := recipeInput("Unfinished curry")
	in.IsPublished = false
	draft := f.createRecipe(t, owner, in)

	_, err := f.queries.RecipeDetail(f.ctx, draft.ID, nil)
	requireKind(t, err, ErrNotFound, "recipe_not_found")

	_, err = f.queries.RecipeDetail(f.ctx, draft.ID, other)
	requireKind(t, err, ErrNotFound, "recipe_not_found")

	detail, err := f.queries.RecipeDetail(f.ctx, draft.ID, owner)
	require.NoError(t, err)
	assert.True(t, detail.IsOwner)
	assert.Empty(t, detail.Comments)

	_, err = f.queries.RecipeDetail(f.ctx, uuid.New(), owner)
	requireKind(t, err, ErrNotFound, "recipe_not_found")
}

func TestProfilePage(t *testing.T) {
	f := newFixture(t)
	owner := newIdentity("owner@example.com")
	visitor := newIdentity("visitor@example.com")

	_, err := f.profiles.Update(f.ctx, owner, ProfileUpdate{Username: strPtr("grandma"), Bio: strPtr("Family recipes")})
	require.NoError(t, err)

	f.createRecipe(t, owner, recipeInput("Sunday roast"))
	draft := recipeInput("Secret sauce")
	draft.IsPublished = false
	f.createRecipe(t, owner, draft)

	page, err := f.queries.ProfilePage(f.ctx, "grandma", visitor)
	require.NoError(t, err)
	assert.False(t, page.IsOwner)
	assert.Equal(t, "Family recipes", *page.Profile.Bio)
	assert.Equal(t, []string{"Sunday roast"}, titles(page.Recipes))
	assert.Equal(t, int64(2), page.Stats.RecipeCount)

	page, err = f.queries.ProfilePage(f.ctx, owner.ID.String(), owner)
	require.NoError(t, err)
	assert.True(t, page.IsOwner)
	assert.ElementsMatch(t, []string{"Sunday roast", "Secret sauce"}, titles(page.Recipes))

	_, err = f.queries.ProfilePage(f.ctx, "ghost_cook", nil)
	requireKind(t, err, ErrNotFound, "profile_not_found")
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	me := newIdentity("me@example.com")
	other := newIdentity("other@example.com")

	_, err := f.queries.Dashboard(f.ctx, nil)
	requireKind(t, err, ErrUnauthenticated, "")

	dash, err := f.queries.Dashboard(f.ctx, me)
	require.NoError(t, err)
	assert.Equal(t, me.ID, dash.Profile.ID)
	assert.Empty(t, dash.Recipes)
	assert.Empty(t, dash.Community)

	draft := recipeInput("My draft")
	draft.IsPublished = false
	f.createRecipe(t, me, draft)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Old one", "Dish two", "Dish three", "Dish four", "Newest one"} {
		r := f.createRecipe(t, other, recipeInput(name))
		f.setCreatedAt(t, r.ID, base.Add(time.Duration(i)*time.Hour))
	}

	dash, err = f.queries.Dashboard(f.ctx, me)
	require.NoError(t, err)
	assert.Equal(t, []string{"My draft"}, titles(dash.Recipes))
	assert.Equal(t, int64(1), dash.Stats.RecipeCount)
	require.Len(t, dash.Community, 4)
	assert.Equal(t, "Newest one", dash.Community[0].Title)
	assert.NotContains(t, titles(dash.Community), "Old one")
}

func TestFeed(t *testing.T) {
	f := newFixture(t)
	owner := newIdentity("owner@example.com")
	fan := newIdentity("fan@example.com")

	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	var newest uuid.UUID
	for i := 0; i < 3; i++ {
		r := f.createRecipe(t, owner, recipeInput([]string{"Alpha stew", "Beta stew", "Gamma stew"}[i]))
		f.setCreatedAt(t, r.ID, base.Add(time.Duration(i)*time.Hour))
		newest = r.ID
	}
	_, err := f.interactions.ToggleLike(f.ctx, fan, newest)
	require.NoError(t, err)
	_, err = f.interactions.AddComment(f.ctx, fan, newest, "Yum")
	require.NoError(t, err)

	feed, err := f.queries.Feed(f.ctx, ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2}, feed.Pagination)
	require.Len(t, feed.Recipes, 2)
	assert.Equal(t, "Gamma stew", feed.Recipes[0].Title)
	assert.Equal(t, RecipeCounts{Likes: 1, Comments: 1}, feed.Recipes[0].RecipeCounts)
	assert.Equal(t, RecipeCounts{}, feed.Recipes[1].RecipeCounts)

	feed, err = f.queries.Feed(f.ctx, ListFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, feed.Pagination.Page)
	require.Len(t, feed.Recipes, 1)
	assert.Equal(t, "Alpha stew", feed.Recipes[0].Title)
}
