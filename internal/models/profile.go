package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is keyed by the identity id. Username stays NULL until set and is
// stored lowercase; the unique index is the source of truth for uniqueness.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  *string   `gorm:"size:20;uniqueIndex" json:"username"`
	Email     *string   `gorm:"size:255" json:"email,omitempty"`
	FullName  *string   `gorm:"size:100" json:"full_name"`
	Bio       *string   `gorm:"size:500" json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// PublicProfile is the read-only projection served to other users.
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Username  *string   `json:"username"`
	FullName  *string   `json:"full_name"`
	Bio       *string   `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) Public() PublicProfile {
	return PublicProfile{
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		Bio:       p.Bio,
		CreatedAt: p.CreatedAt,
	}
}

// Author is the subset of a profile joined onto recipes and comments.
type Author struct {
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
}
