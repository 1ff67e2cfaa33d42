package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	usernameBaseLength   = 14
	usernameSuffixLength = 5
	usernameMinBase      = 3
)

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// ProfileUpdate replaces all three editable fields. Nil or blank clears a field.
type ProfileUpdate struct {
	Username *string
	FullName *string
	Bio      *string
}

type ProfileStats struct {
	RecipeCount   int64 `json:"recipe_count"`
	LikesReceived int64 `json:"likes_received"`
	Followers     int64 `json:"followers"`
	Following     int64 `json:"following"`
}

// GenerateUsername derives a provisioning username from the email local-part
// and the first characters of seed (normally the identity id).
func GenerateUsername(email, seed string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if len(base) > usernameBaseLength {
		base = base[:usernameBaseLength]
	}

	suffix := strings.ReplaceAll(seed, "-", "")
	if len(suffix) > usernameSuffixLength {
		suffix = suffix[:usernameSuffixLength]
	}
	suffix = strings.ToLower(suffix)

	if len(base) < usernameMinBase {
		return "user_" + suffix
	}
	return base + "_" + suffix
}

// GetOrCreate returns the caller's profile, provisioning it on first access.
// A generated-username collision regenerates the suffix once; a concurrent
// insert of the same profile id returns the row that won.
func (s *ProfileService) GetOrCreate(ctx context.Context, id *identity.Identity) (*models.Profile, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	profile, err := s.findByID(ctx, id.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistenceError("get profile", err, "user_id", id.ID)
	}

	profile, err = s.insert(ctx, id, GenerateUsername(id.Email, id.ID.String()))
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if existing, findErr := s.findByID(ctx, id.ID); findErr == nil {
			return existing, nil
		}
		profile, err = s.insert(ctx, id, GenerateUsername(id.Email, uuid.NewString()))
	}
	if err != nil {
		return nil, persistenceError("create profile", err, "user_id", id.ID)
	}
	return profile, nil
}

func (s *ProfileService) findByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) insert(ctx context.Context, id *identity.Identity, username string) (*models.Profile, error) {
	now := time.Now().UTC()
	profile := models.Profile{
		ID:        id.ID,
		Username:  &username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if id.Email != "" {
		email := id.Email
		profile.Email = &email
	}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetPublic looks a profile up by id (when the key parses as a UUID) or by username.
func (s *ProfileService) GetPublic(ctx context.Context, usernameOrID string) (*models.PublicProfile, error) {
	query := s.db.WithContext(ctx).Model(&models.Profile{})
	if userID, err := uuid.Parse(usernameOrID); err == nil {
		query = query.Where("id = ?", userID)
	} else {
		query = query.Where("username = ?", strings.ToLower(strings.TrimSpace(usernameOrID)))
	}

	var profile models.Profile
	if err := query.First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("profile_not_found", "profile not found")
		}
		return nil, persistenceError("get public profile", err, "key", usernameOrID)
	}
	public := profile.Public()
	return &public, nil
}

// Update validates every field before writing anything.
func (s *ProfileService) Update(ctx context.Context, id *identity.Identity, in ProfileUpdate) (*models.Profile, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	username := optionalString(in.Username)
	fullName := optionalString(in.FullName)
	bio := optionalString(in.Bio)

	if username != nil {
		if err := validateUsername(*username); err != nil {
			return nil, err
		}
		lower := strings.ToLower(*username)
		username = &lower

		taken, err := s.usernameTaken(ctx, lower, id.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, usernameTakenError()
		}
	}
	if fullName != nil && runeLen(*fullName) > MaxFullNameLength {
		return nil, validationError("full_name_too_long", "full name can be at most 100 characters")
	}
	if bio != nil && runeLen(*bio) > MaxBioLength {
		return nil, validationError("bio_too_long", "bio can be at most 500 characters")
	}

	if _, err := s.GetOrCreate(ctx, id); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id.ID).
		Updates(map[string]interface{}{
			"username":   username,
			"full_name":  fullName,
			"bio":        bio,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, usernameTakenError()
		}
		return nil, persistenceError("update profile", err, "user_id", id.ID)
	}

	profile, err := s.findByID(ctx, id.ID)
	if err != nil {
		return nil, persistenceError("reload profile", err, "user_id", id.ID)
	}
	return profile, nil
}

// CheckUsernameAvailable is a read-only hint; the unique index still decides on write.
func (s *ProfileService) CheckUsernameAvailable(ctx context.Context, id *identity.Identity, candidate string) (bool, error) {
	if err := requireIdentity(id); err != nil {
		return false, err
	}
	candidate = strings.TrimSpace(candidate)
	if err := validateUsername(candidate); err != nil {
		return false, err
	}
	taken, err := s.usernameTaken(ctx, strings.ToLower(candidate), id.ID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *ProfileService) usernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("username = ? AND id <> ?", username, exclude).
		Count(&count).Error
	if err != nil {
		return false, persistenceError("check username", err, "username", username)
	}
	return count > 0, nil
}

// Stats only counts recipes; likes received and follow counts are not tracked yet.
func (s *ProfileService) Stats(ctx context.Context, userID uuid.UUID) (*ProfileStats, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Scopes(identity.OwnedBy(userID)).
		Count(&count).Error
	if err != nil {
		return nil, persistenceError("count recipes", err, "user_id", userID)
	}
	return &ProfileStats{RecipeCount: count}, nil
}

func usernameTakenError() *Error {
	return conflictError("username_taken", "this username is already taken")
}
