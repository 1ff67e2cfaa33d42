package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// InteractionService handles likes and comments scoped to a recipe.
type InteractionService struct {
	db       *gorm.DB
	recipes  *RecipeService
	profiles *ProfileService
}

func NewInteractionService(db *gorm.DB, recipes *RecipeService, profiles *ProfileService) *InteractionService {
	return &InteractionService{db: db, recipes: recipes, profiles: profiles}
}

type LikeResult struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

type LikeInfo struct {
	Count     int64 `json:"count"`
	UserLiked bool  `json:"user_liked"`
}

// ToggleLike removes the caller's like if present, otherwise adds one. The
// delete-first order plus the (user_id, recipe_id) unique index make two
// concurrent toggles settle on a single row.
func (s *InteractionService) ToggleLike(ctx context.Context, id *identity.Identity, recipeID uuid.UUID) (*LikeResult, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if err := s.requireRecipe(ctx, recipeID, id); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	removed := db.Where("user_id = ? AND recipe_id = ?", id.ID, recipeID).Delete(&models.Like{})
	if removed.Error != nil {
		return nil, persistenceError("unlike recipe", removed.Error, "recipe_id", recipeID, "user_id", id.ID)
	}

	liked := removed.RowsAffected == 0
	if liked {
		like := models.Like{UserID: id.ID, RecipeID: recipeID}
		if err := db.Create(&like).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, persistenceError("like recipe", err, "recipe_id", recipeID, "user_id", id.ID)
		}
	}

	count, err := s.likeCount(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, Count: count}, nil
}

// LikeInfo reports the like count and whether the caller (if any) liked the
// recipe. Drafts report NotFound to everyone but their author.
func (s *InteractionService) LikeInfo(ctx context.Context, recipeID uuid.UUID, id *identity.Identity) (*LikeInfo, error) {
	if err := s.requireRecipe(ctx, recipeID, id); err != nil {
		return nil, err
	}
	return s.likeInfo(ctx, recipeID, id)
}

func (s *InteractionService) likeInfo(ctx context.Context, recipeID uuid.UUID, id *identity.Identity) (*LikeInfo, error) {
	var info LikeInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.likeCount(gctx, recipeID)
		info.Count = count
		return err
	})
	if id != nil {
		g.Go(func() error {
			liked, err := s.hasLiked(gctx, id.ID, recipeID)
			info.UserLiked = liked
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *InteractionService) likeCount(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Like{}).Where("recipe_id = ?", recipeID).Count(&count).Error; err != nil {
		return 0, persistenceError("count likes", err, "recipe_id", recipeID)
	}
	return count, nil
}

func (s *InteractionService) hasLiked(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, persistenceError("check like", err, "recipe_id", recipeID)
	}
	return count > 0, nil
}

func (s *InteractionService) requireRecipe(ctx context.Context, recipeID uuid.UUID, viewer *identity.Identity) error {
	ok, err := s.recipes.visible(ctx, recipeID, viewer)
	if err != nil {
		return err
	}
	if !ok {
		return notFoundError("recipe_not_found", "recipe not found")
	}
	return nil
}

func validateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", validationError("comment_empty", "comment cannot be empty")
	}
	if runeLen(content) > MaxCommentLength {
		return "", validationError("comment_too_long", "comment can be at most 1000 characters")
	}
	return content, nil
}

func (s *InteractionService) AddComment(ctx context.Context, id *identity.Identity, recipeID uuid.UUID, content string) (*models.CommentWithAuthor, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}
	if err := s.requireRecipe(ctx, recipeID, id); err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetOrCreate(ctx, id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := models.Comment{
		UserID:    id.ID,
		RecipeID:  recipeID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, persistenceError("add comment", err, "recipe_id", recipeID, "user_id", id.ID)
	}
	return s.loadComment(ctx, comment.ID)
}

func (s *InteractionService) UpdateComment(ctx context.Context, id *identity.Identity, commentID uuid.UUID, content string) (*models.CommentWithAuthor, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAuthor(ctx, id, commentID); err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", commentID).
		Scopes(identity.OwnedBy(id.ID)).
		Updates(map[string]interface{}{
			"content":    content,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, persistenceError("update comment", result.Error, "comment_id", commentID)
	}
	if result.RowsAffected == 0 {
		return nil, commentForbiddenError()
	}
	return s.loadComment(ctx, commentID)
}

func (s *InteractionService) DeleteComment(ctx context.Context, id *identity.Identity, commentID uuid.UUID) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if err := s.authorizeAuthor(ctx, id, commentID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Scopes(identity.OwnedBy(id.ID)).
		Where("id = ?", commentID).
		Delete(&models.Comment{})
	if result.Error != nil {
		return persistenceError("delete comment", result.Error, "comment_id", commentID)
	}
	if result.RowsAffected == 0 {
		return commentForbiddenError()
	}
	return nil
}

func (s *InteractionService) authorizeAuthor(ctx context.Context, id *identity.Identity, commentID uuid.UUID) error {
	var comment models.Comment
	err := s.db.WithContext(ctx).Select("id", "user_id").First(&comment, "id = ?", commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return commentForbiddenError()
		}
		return persistenceError("load comment author", err, "comment_id", commentID)
	}
	if comment.UserID != id.ID {
		return commentForbiddenError()
	}
	return nil
}

// ListComments returns all comments on a recipe, newest first.
func (s *InteractionService) ListComments(ctx context.Context, recipeID uuid.UUID, id *identity.Identity) ([]models.CommentWithAuthor, error) {
	if err := s.requireRecipe(ctx, recipeID, id); err != nil {
		return nil, err
	}
	return s.listComments(ctx, recipeID)
}

func (s *InteractionService) listComments(ctx context.Context, recipeID uuid.UUID) ([]models.CommentWithAuthor, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Profile", selectAuthor).
		Where("recipe_id = ?", recipeID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, persistenceError("list comments", err, "recipe_id", recipeID)
	}

	out := make([]models.CommentWithAuthor, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentWithAuthor(c))
	}
	return out, nil
}

func (s *InteractionService) CommentCount(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("recipe_id = ?", recipeID).Count(&count).Error; err != nil {
		return 0, persistenceError("count comments", err, "recipe_id", recipeID)
	}
	return count, nil
}

func (s *InteractionService) loadComment(ctx context.Context, commentID uuid.UUID) (*models.CommentWithAuthor, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Preload("Profile", selectAuthor).First(&comment, "id = ?", commentID).Error
	if err != nil {
		return nil, persistenceError("reload comment", err, "comment_id", commentID)
	}
	out := commentWithAuthor(comment)
	return &out, nil
}

func commentWithAuthor(c models.Comment) models.CommentWithAuthor {
	out := models.CommentWithAuthor{Comment: c, IsEdited: c.Edited()}
	if c.Profile.ID != uuid.Nil {
		out.Author = &models.Author{Username: c.Profile.Username, FullName: c.Profile.FullName}
	}
	return out
}

func commentForbiddenError() *Error {
	return forbiddenError("comment_forbidden", "you do not have permission to modify this comment")
}

type RecipeCounts struct {
	Likes    int64 `json:"like_count"`
	Comments int64 `json:"comment_count"`
}

type groupedCount struct {
	RecipeID uuid.UUID
	Total    int64
}

// Counts returns like and comment totals for each recipe id in one grouped
// query per table. Recipes without rows are absent from the map.
func (s *InteractionService) Counts(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID]RecipeCounts, error) {
	out := make(map[uuid.UUID]RecipeCounts, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}

	var likes, comments []groupedCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.groupedCounts(gctx, &models.Like{}, recipeIDs, &likes)
	})
	g.Go(func() error {
		return s.groupedCounts(gctx, &models.Comment{}, recipeIDs, &comments)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, l := range likes {
		c := out[l.RecipeID]
		c.Likes = l.Total
		out[l.RecipeID] = c
	}
	for _, cm := range comments {
		c := out[cm.RecipeID]
		c.Comments = cm.Total
		out[cm.RecipeID] = c
	}
	return out, nil
}

func (s *InteractionService) groupedCounts(ctx context.Context, model interface{}, recipeIDs []uuid.UUID, dest *[]groupedCount) error {
	err := s.db.WithContext(ctx).Model(model).
		Select("recipe_id, COUNT(*) AS total").
		Where("recipe_id IN ?", recipeIDs).
		Group("recipe_id").
		Scan(dest).Error
	if err != nil {
		return persistenceError("count interactions", err)
	}
	return nil
}
