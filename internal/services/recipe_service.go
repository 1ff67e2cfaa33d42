package services

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortPopular = "popular"

	DefaultPageSize = 12
	MaxPageSize     = 50
)

// popularityOrder sorts by like count; ties fall back to newest first.
const popularityOrder = "(SELECT COUNT(*) FROM likes WHERE likes.recipe_id = recipes.id) DESC"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type RecipeService struct {
	db       *gorm.DB
	profiles *ProfileService
}

func NewRecipeService(db *gorm.DB, profiles *ProfileService) *RecipeService {
	return &RecipeService{db: db, profiles: profiles}
}

// RecipeInput carries every mutable recipe field; Update replaces all of them.
type RecipeInput struct {
	Title            string
	Description      *string
	IngredientsList  []string
	InstructionsList []string
	CookingTime      *int
	Servings         *int
	Difficulty       *string
	Category         *string
	IsPublished      bool
}

type ListFilter struct {
	Category   string
	Difficulty string
	Search     string
	SortBy     string
	Limit      int
	Offset     int
}

type RecipePage struct {
	Items      []models.RecipeWithAuthor `json:"recipes"`
	TotalCount int64                     `json:"count"`
}

// PageOffset converts a 1-indexed page number to an offset.
func PageOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// Normalize applies defaults and clamps paging values.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	switch f.SortBy {
	case SortNewest, SortOldest, SortPopular:
	default:
		f.SortBy = SortNewest
	}
	f.Category = strings.TrimSpace(f.Category)
	f.Difficulty = strings.TrimSpace(f.Difficulty)
	f.Search = strings.TrimSpace(f.Search)
	return f
}

func activeFilter(v string) bool {
	return v != "" && !strings.EqualFold(v, "all")
}

// buildRecipe validates in and returns the fields to persist. Nothing is
// written when it fails.
func buildRecipe(in RecipeInput) (*models.Recipe, error) {
	title := strings.TrimSpace(in.Title)
	if runeLen(title) < MinTitleLength {
		return nil, validationError("title_too_short", "recipe title must be at least 3 characters")
	}

	ingredients := cleanSteps(in.IngredientsList)
	if len(ingredients) == 0 {
		return nil, validationError("ingredients_required", "add at least one ingredient")
	}
	instructions := cleanSteps(in.InstructionsList)
	if len(instructions) == 0 {
		return nil, validationError("instructions_required", "add at least one instruction step")
	}

	if in.CookingTime != nil && *in.CookingTime <= 0 {
		return nil, validationError("cooking_time_invalid", "cooking time must be a positive number of minutes")
	}
	servings := models.DefaultServings
	if in.Servings != nil {
		if *in.Servings <= 0 {
			return nil, validationError("servings_invalid", "servings must be a positive number")
		}
		servings = *in.Servings
	}

	difficulty := optionalString(in.Difficulty)
	if difficulty != nil {
		d := strings.ToLower(*difficulty)
		if !slices.Contains(models.Difficulties, d) {
			return nil, validationError("difficulty_invalid", "difficulty must be easy, medium or hard")
		}
		difficulty = &d
	}

	recipe := &models.Recipe{
		Title:       title,
		Description: optionalString(in.Description),
		CookingTime: in.CookingTime,
		Servings:    servings,
		Difficulty:  difficulty,
		Category:    optionalString(in.Category),
		IsPublished: in.IsPublished,
	}
	recipe.SetSteps(ingredients, instructions)
	return recipe, nil
}

func (s *RecipeService) Create(ctx context.Context, id *identity.Identity, in RecipeInput) (*models.Recipe, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	recipe, err := buildRecipe(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetOrCreate(ctx, id); err != nil {
		return nil, err
	}

	recipe.UserID = id.ID
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, persistenceError("create recipe", err, "user_id", id.ID)
	}
	return recipe, nil
}

func (s *RecipeService) Update(ctx context.Context, id *identity.Identity, recipeID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, id, recipeID); err != nil {
		return nil, err
	}
	recipe, err := buildRecipe(in)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		Scopes(identity.OwnedBy(id.ID)).
		Updates(map[string]interface{}{
			"title":             recipe.Title,
			"description":       recipe.Description,
			"ingredients":       recipe.Ingredients,
			"instructions":      recipe.Instructions,
			"ingredients_list":  recipe.IngredientsList,
			"instructions_list": recipe.InstructionsList,
			"cooking_time":      recipe.CookingTime,
			"servings":          recipe.Servings,
			"difficulty":        recipe.Difficulty,
			"category":          recipe.Category,
			"is_published":      recipe.IsPublished,
		})
	if result.Error != nil {
		return nil, persistenceError("update recipe", result.Error, "recipe_id", recipeID)
	}
	if result.RowsAffected == 0 {
		return nil, recipeForbiddenError()
	}

	var updated models.Recipe
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", recipeID).Error; err != nil {
		return nil, persistenceError("reload recipe", err, "recipe_id", recipeID)
	}
	return &updated, nil
}

// Delete hard-deletes the recipe. Missing and foreign recipes fail identically.
func (s *RecipeService) Delete(ctx context.Context, id *identity.Identity, recipeID uuid.UUID) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if err := s.authorizeOwner(ctx, id, recipeID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Scopes(identity.OwnedBy(id.ID)).
		Where("id = ?", recipeID).
		Delete(&models.Recipe{})
	if result.Error != nil {
		return persistenceError("delete recipe", result.Error, "recipe_id", recipeID)
	}
	if result.RowsAffected == 0 {
		return recipeForbiddenError()
	}
	return nil
}

func (s *RecipeService) authorizeOwner(ctx context.Context, id *identity.Identity, recipeID uuid.UUID) error {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "user_id").First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return recipeForbiddenError()
		}
		return persistenceError("load recipe owner", err, "recipe_id", recipeID)
	}
	if recipe.UserID != id.ID {
		return recipeForbiddenError()
	}
	return nil
}

// GetByID returns nil, nil when the recipe does not exist.
func (s *RecipeService) GetByID(ctx context.Context, recipeID uuid.UUID) (*models.RecipeWithAuthor, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Owner", selectAuthor).
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, persistenceError("get recipe", err, "recipe_id", recipeID)
	}
	result := withAuthor(recipe)
	return &result, nil
}

// List returns published recipes matching f and the total match count
// before pagination.
func (s *RecipeService) List(ctx context.Context, f ListFilter) (*RecipePage, error) {
	f = f.Normalize()

	query := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(identity.Published())
	if activeFilter(f.Category) {
		query = query.Where("category = ?", f.Category)
	}
	if activeFilter(f.Difficulty) {
		query = query.Where("difficulty = ?", strings.ToLower(f.Difficulty))
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
		query = query.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\' OR LOWER(ingredients) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, persistenceError("count recipes", err)
	}

	ordered := query
	switch f.SortBy {
	case SortOldest:
		ordered = ordered.Order("recipes.created_at ASC")
	case SortPopular:
		ordered = ordered.Order(popularityOrder).Order("recipes.created_at DESC")
	default:
		ordered = ordered.Order("recipes.created_at DESC")
	}

	var recipes []models.Recipe
	err := ordered.Preload("Owner", selectAuthor).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, persistenceError("list recipes", err)
	}

	return &RecipePage{Items: withAuthors(recipes), TotalCount: total}, nil
}

// ListByUser does not check the caller: callers pass includeUnpublished only
// for the owner. limit <= 0 means no limit.
func (s *RecipeService) ListByUser(ctx context.Context, userID uuid.UUID, includeUnpublished bool, limit int) ([]models.RecipeWithAuthor, error) {
	query := s.db.WithContext(ctx).
		Scopes(identity.OwnedBy(userID)).
		Preload("Owner", selectAuthor).
		Order("created_at DESC")
	if !includeUnpublished {
		query = query.Scopes(identity.Published())
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, persistenceError("list user recipes", err, "user_id", userID)
	}
	return withAuthors(recipes), nil
}

// visible reports whether the recipe exists and the viewer may see it.
func (s *RecipeService) visible(ctx context.Context, recipeID uuid.UUID, viewer *identity.Identity) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		Scopes(identity.VisibleTo(viewer)).
		Count(&count).Error
	if err != nil {
		return false, persistenceError("check recipe", err, "recipe_id", recipeID)
	}
	return count > 0, nil
}

func selectAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "full_name")
}

func withAuthor(r models.Recipe) models.RecipeWithAuthor {
	out := models.RecipeWithAuthor{Recipe: r}
	if r.Owner.ID != uuid.Nil {
		out.Author = &models.Author{Username: r.Owner.Username, FullName: r.Owner.FullName}
	}
	return out
}

func withAuthors(recipes []models.Recipe) []models.RecipeWithAuthor {
	out := make([]models.RecipeWithAuthor, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, withAuthor(r))
	}
	return out
}

func recipeForbiddenError() *Error {
	return forbiddenError("recipe_forbidden", "you do not have permission to modify this recipe")
}
