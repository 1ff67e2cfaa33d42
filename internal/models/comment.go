package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment has UpdatedAt equal to CreatedAt until the first edit.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_recipe_created,priority:1" json:"recipe_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_comments_recipe_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Recipe    Recipe    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	Profile   Profile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Comment) Edited() bool {
	return c.UpdatedAt.After(c.CreatedAt)
}

type CommentWithAuthor struct {
	Comment
	IsEdited bool    `json:"edited"`
	Author   *Author `json:"profiles"`
}
