package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	ctx          context.Context
	db           *gorm.DB
	profiles     *ProfileService
	recipes      *RecipeService
	interactions *InteractionService
	queries      *QueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	profiles := NewProfileService(db)
	recipes := NewRecipeService(db, profiles)
	interactions := NewInteractionService(db, recipes, profiles)
	return &fixture{
		ctx:          context.Background(),
		db:           db,
		profiles:     profiles,
		recipes:      recipes,
		interactions: interactions,
		queries:      NewQueryService(recipes, interactions, profiles, catalog.Default()),
	}
}

func newIdentity(email string) *identity.Identity {
	return &identity.Identity{ID: uuid.New(), Email: email}
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func recipeInput(title string) RecipeInput {
	return RecipeInput{
		Title:            title,
		IngredientsList:  []string{"2 eggs", "1 cup flour"},
		InstructionsList: []string{"Mix", "Bake"},
		IsPublished:      true,
	}
}

func (f *fixture) createRecipe(t *testing.T, owner *identity.Identity, in RecipeInput) *models.Recipe {
	t.Helper()
	recipe, err := f.recipes.Create(f.ctx, owner, in)
	require.NoError(t, err)
	return recipe
}

// setCreatedAt pins a recipe's creation time so ordering is deterministic.
func (f *fixture) setCreatedAt(t *testing.T, recipeID uuid.UUID, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Recipe{}).Where("id = ?", recipeID).
		UpdateColumn("created_at", at.UTC()).Error)
}

func requireKind(t *testing.T, err error, target *Error, code string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, target)
	if code != "" {
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		require.Equal(t, code, svcErr.Code)
	}
}
