package services

import (
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUsername(t *testing.T) {
	seed := "abcdef12-3456-7890-abcd-ef1234567890"

	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"strips punctuation", "John.Doe+tag@example.com", "johndoetag_abcde"},
		{"keeps underscores", "chef_ana@example.com", "chef_ana_abcde"},
		{"short local part", "ab@example.com", "user_abcde"},
		{"no usable characters", "...@example.com", "user_abcde"},
		{"caps the base", "averyveryverylongemailaddress@example.com", "averyveryveryl_abcde"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateUsername(tt.email, seed)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 20)
			assert.NoError(t, validateUsername(got))
		})
	}
}

func TestGetOrCreateProvisionsOnce(t *testing.T) {
	f := newFixture(t)
	id := newIdentity("maria@example.com")

	first, err := f.profiles.GetOrCreate(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, first.Username)
	assert.Equal(t, id.ID, first.ID)
	assert.True(t, strings.HasPrefix(*first.Username, "maria_"))
	require.NotNil(t, first.Email)
	assert.Equal(t, "maria@example.com", *first.Email)

	second, err := f.profiles.GetOrCreate(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, *first.Username, *second.Username)

	var count int64
	require.NoError(t, f.db.Table("profiles").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateRequiresIdentity(t *testing.T) {
	f := newFixture(t)

	_, err := f.profiles.GetOrCreate(f.ctx, nil)
	requireKind(t, err, ErrUnauthenticated, "unauthenticated")
}

func TestGetOrCreateRegeneratesCollidingUsername(t *testing.T) {
	f := newFixture(t)
	a := &identity.Identity{ID: uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001"), Email: "sam@example.com"}
	b := &identity.Identity{ID: uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000002"), Email: "sam@example.com"}

	pa, err := f.profiles.GetOrCreate(f.ctx, a)
	require.NoError(t, err)
	pb, err := f.profiles.GetOrCreate(f.ctx, b)
	require.NoError(t, err)

	assert.Equal(t, "sam_aaaaa", *pa.Username)
	assert.NotEqual(t, *pa.Username, *pb.Username)
	assert.True(t, strings.HasPrefix(*pb.Username, "sam_"))
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	id := newIdentity("ana@example.com")

	profile, err := f.profiles.Update(f.ctx, id, ProfileUpdate{
		Username: strPtr("  Chef_Ana "),
		FullName: strPtr("Ana Lima"),
		Bio:      strPtr("Bakes bread"),
	})
	require.NoError(t, err)
	assert.Equal(t, "chef_ana", *profile.Username)
	assert.Equal(t, "Ana Lima", *profile.FullName)
	assert.Equal(t, "Bakes bread", *profile.Bio)

	profile, err = f.profiles.Update(f.ctx, id, ProfileUpdate{Username: strPtr("chef_ana"), FullName: strPtr("  ")})
	require.NoError(t, err)
	assert.Nil(t, profile.FullName)
	assert.Nil(t, profile.Bio)
}

func TestUpdateProfileRejectsTakenUsername(t *testing.T) {
	f := newFixture(t)
	owner := newIdentity("owner@example.com")
	other := newIdentity("other@example.com")

	_, err := f.profiles.Update(f.ctx, owner, ProfileUpdate{Username: strPtr("baker")})
	require.NoError(t, err)

	_, err = f.profiles.Update(f.ctx, other, ProfileUpdate{Username: strPtr("Baker")})
	requireKind(t, err, ErrConflict, "username_taken")
}

func TestUpdateProfileValidation(t *testing.T) {
	f := newFixture(t)
	id := newIdentity("val@example.com")

	tests := []struct {
		name string
		in   ProfileUpdate
		code string
	}{
		{"username too short", ProfileUpdate{Username: strPtr("ab")}, "username_format"},
		{"username too long", ProfileUpdate{Username: strPtr(strings.Repeat("a", 21))}, "username_format"},
		{"username bad characters", ProfileUpdate{Username: strPtr("chef-ana")}, "username_format"},
		{"full name too long", ProfileUpdate{FullName: strPtr(strings.Repeat("x", 101))}, "full_name_too_long"},
		{"bio too long", ProfileUpdate{Bio: strPtr(strings.Repeat("é", 501))}, "bio_too_long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.profiles.Update(f.ctx, id, tt.in)
			requireKind(t, err, ErrValidation, tt.code)
		})
	}

	// Nothing is written when validation fails.
	var count int64
	require.NoError(t, f.db.Table("profiles").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCheckUsernameAvailable(t *testing.T) {
	f := newFixture(t)
	owner := newIdentity("owner@example.com")
	other := newIdentity("other@example.com")

	_, err := f.profiles.Update(f.ctx, owner, ProfileUpdate{Username: strPtr("pasta_king")})
	require.NoError(t, err)

	available, err := f.profiles.CheckUsernameAvailable(f.ctx, owner, "pasta_king")
	require.NoError(t, err)
	assert.True(t, available, "own username counts as available")

	available, err = f.profiles.CheckUsernameAvailable(f.ctx, other, "PASTA_KING")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = f.profiles.CheckUsernameAvailable(f.ctx, other, "fresh_name")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = f.profiles.CheckUsernameAvailable(f.ctx, other, "no")
	requireKind(t, err, ErrValidation, "username_format")

	_, err = f.profiles.CheckUsernameAvailable(f.ctx, nil, "fresh_name")
	requireKind(t, err, ErrUnauthenticated, "")
}

func TestGetPublicByUsernameOrID(t *testing.T) {
	f := newFixture(t)
	id := newIdentity("pub@example.com")

	_, err := f.profiles.Update(f.ctx, id, ProfileUpdate{Username: strPtr("public_cook")})
	require.NoError(t, err)

	byName, err := f.profiles.GetPublic(f.ctx, "Public_Cook")
	require.NoError(t, err)
	assert.Equal(t, id.ID, byName.ID)

	byID, err := f.profiles.GetPublic(f.ctx, id.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "public_cook", *byID.Username)

	_, err = f.profiles.GetPublic(f.ctx, "nobody_here")
	requireKind(t, err, ErrNotFound, "profile_not_found")
}

func TestStatsCountsRecipes(t *testing.T) {
	f := newFixture(t)
	id := newIdentity("stats@example.com")

	f.createRecipe(t, id, recipeInput("Lentil soup"))
	draft := recipeInput("Secret stew")
	draft.IsPublished = false
	f.createRecipe(t, id, draft)

	stats, err := f.profiles.Stats(f.ctx, id.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.RecipeCount)
	assert.Zero(t, stats.Followers)
}
