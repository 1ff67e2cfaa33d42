package identity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy returns a GORM scope that filters by user_id.
func OwnedBy(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// Published restricts recipe queries to published rows.
func Published() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_published = ?", true)
	}
}

// VisibleTo restricts recipe queries to published rows plus the viewer's
// own drafts. A nil viewer sees published rows only.
func VisibleTo(viewer *Identity) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewer == nil {
			return db.Where("is_published = ?", true)
		}
		return db.Where("(is_published = ? OR user_id = ?)", true, viewer.ID)
	}
}
