package services

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	profilePageRecipes = 12
	dashboardCommunity = 4
)

// QueryService composes read models for screens that need several
// components at once. Secondary reads degrade to empty values instead of
// failing the whole page.
type QueryService struct {
	recipes      *RecipeService
	interactions *InteractionService
	profiles     *ProfileService
	categories   *catalog.Registry
}

func NewQueryService(recipes *RecipeService, interactions *InteractionService, profiles *ProfileService, categories *catalog.Registry) *QueryService {
	return &QueryService{
		recipes:      recipes,
		interactions: interactions,
		profiles:     profiles,
		categories:   categories,
	}
}

type RecipeDetail struct {
	Recipe        *models.RecipeWithAuthor   `json:"recipe"`
	Ingredients   []string                   `json:"ingredients"`
	Instructions  []string                   `json:"instructions"`
	CategoryLabel string                     `json:"category_label,omitempty"`
	Likes         LikeInfo                   `json:"likes"`
	Comments      []models.CommentWithAuthor `json:"comments"`
	CommentCount  int64                      `json:"comment_count"`
	IsOwner       bool                       `json:"is_owner"`
}

type ProfilePage struct {
	Profile *models.PublicProfile     `json:"profile"`
	Stats   ProfileStats              `json:"stats"`
	Recipes []models.RecipeWithAuthor `json:"recipes"`
	IsOwner bool                      `json:"is_owner"`
}

type Dashboard struct {
	Profile   *models.Profile           `json:"profile"`
	Recipes   []models.RecipeWithAuthor `json:"recipes"`
	Stats     ProfileStats              `json:"stats"`
	Community []models.RecipeWithAuthor `json:"community"`
}

type RecipeCard struct {
	models.RecipeWithAuthor
	RecipeCounts
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

type FeedPage struct {
	Recipes    []RecipeCard `json:"recipes"`
	Pagination Pagination   `json:"pagination"`
}

// RecipeDetail loads a recipe with its likes and comments. Drafts are only
// visible to their author.
func (s *QueryService) RecipeDetail(ctx context.Context, recipeID uuid.UUID, id *identity.Identity) (*RecipeDetail, error) {
	var (
		recipe   *models.RecipeWithAuthor
		likes    LikeInfo
		comments []models.CommentWithAuthor
		count    int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.recipes.GetByID(gctx, recipeID)
		recipe = r
		return err
	})
	g.Go(func() error {
		info, err := s.interactions.likeInfo(gctx, recipeID, id)
		if err != nil {
			degraded("like info", err, "recipe_id", recipeID)
			return nil
		}
		likes = *info
		return nil
	})
	g.Go(func() error {
		list, err := s.interactions.listComments(gctx, recipeID)
		if err != nil {
			degraded("comments", err, "recipe_id", recipeID)
			return nil
		}
		comments = list
		return nil
	})
	g.Go(func() error {
		n, err := s.interactions.CommentCount(gctx, recipeID)
		if err != nil {
			degraded("comment count", err, "recipe_id", recipeID)
			return nil
		}
		count = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if recipe == nil {
		return nil, notFoundError("recipe_not_found", "recipe not found")
	}
	isOwner := id != nil && recipe.UserID == id.ID
	if !recipe.IsPublished && !isOwner {
		return nil, notFoundError("recipe_not_found", "recipe not found")
	}
	if comments == nil {
		comments = []models.CommentWithAuthor{}
	}

	detail := &RecipeDetail{
		Recipe:       recipe,
		Ingredients:  recipe.IngredientSteps(),
		Instructions: recipe.InstructionSteps(),
		Likes:        likes,
		Comments:     comments,
		CommentCount: count,
		IsOwner:      isOwner,
	}
	if recipe.Category != nil && s.categories != nil {
		detail.CategoryLabel = s.categories.Label(*recipe.Category)
	}
	return detail, nil
}

// ProfilePage shows a public profile. The owner also sees their drafts.
func (s *QueryService) ProfilePage(ctx context.Context, usernameOrID string, id *identity.Identity) (*ProfilePage, error) {
	profile, err := s.profiles.GetPublic(ctx, usernameOrID)
	if err != nil {
		return nil, err
	}

	page := &ProfilePage{
		Profile: profile,
		Recipes: []models.RecipeWithAuthor{},
		IsOwner: id != nil && profile.ID == id.ID,
	}

	var g errgroup.Group
	g.Go(func() error {
		stats, err := s.profiles.Stats(ctx, profile.ID)
		if err != nil {
			degraded("profile stats", err, "user_id", profile.ID)
			return nil
		}
		page.Stats = *stats
		return nil
	})
	g.Go(func() error {
		limit := profilePageRecipes
		if page.IsOwner {
			limit = 0
		}
		recipes, err := s.recipes.ListByUser(ctx, profile.ID, page.IsOwner, limit)
		if err != nil {
			degraded("profile recipes", err, "user_id", profile.ID)
			return nil
		}
		page.Recipes = recipes
		return nil
	})
	_ = g.Wait()

	return page, nil
}

// Dashboard is the signed-in home screen: the caller's profile, their
// recipes including drafts, and the newest community recipes.
func (s *QueryService) Dashboard(ctx context.Context, id *identity.Identity) (*Dashboard, error) {
	profile, err := s.profiles.GetOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{
		Profile:   profile,
		Recipes:   []models.RecipeWithAuthor{},
		Community: []models.RecipeWithAuthor{},
	}

	var g errgroup.Group
	g.Go(func() error {
		recipes, err := s.recipes.ListByUser(ctx, id.ID, true, 0)
		if err != nil {
			degraded("own recipes", err, "user_id", id.ID)
			return nil
		}
		dash.Recipes = recipes
		return nil
	})
	g.Go(func() error {
		stats, err := s.profiles.Stats(ctx, id.ID)
		if err != nil {
			degraded("dashboard stats", err, "user_id", id.ID)
			return nil
		}
		dash.Stats = *stats
		return nil
	})
	g.Go(func() error {
		page, err := s.recipes.List(ctx, ListFilter{SortBy: SortNewest, Limit: dashboardCommunity})
		if err != nil {
			degraded("community recipes", err)
			return nil
		}
		dash.Community = page.Items
		return nil
	})
	_ = g.Wait()

	return dash, nil
}

// Feed lists published recipes with per-card like and comment counts.
func (s *QueryService) Feed(ctx context.Context, f ListFilter) (*FeedPage, error) {
	f = f.Normalize()
	page, err := s.recipes.List(ctx, f)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(page.Items))
	for _, r := range page.Items {
		ids = append(ids, r.ID)
	}
	counts, err := s.interactions.Counts(ctx, ids)
	if err != nil {
		degraded("feed counts", err)
		counts = map[uuid.UUID]RecipeCounts{}
	}

	cards := make([]RecipeCard, 0, len(page.Items))
	for _, r := range page.Items {
		cards = append(cards, RecipeCard{RecipeWithAuthor: r, RecipeCounts: counts[r.ID]})
	}

	return &FeedPage{
		Recipes: cards,
		Pagination: Pagination{
			Page:       f.Offset/f.Limit + 1,
			Limit:      f.Limit,
			Total:      page.TotalCount,
			TotalPages: TotalPages(page.TotalCount, f.Limit),
		},
	}, nil
}

func degraded(part string, err error, attrs ...any) {
	slog.Warn("partial read failed", append([]any{"part", part, "error", err}, attrs...)...)
}
