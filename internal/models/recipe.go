package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	DefaultServings = 4
)

var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Recipe keeps both the structured lists and their newline-joined text.
// The flattened columns exist only for older readers and are always derived
// from the lists on write.
type Recipe struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	Title            string                      `gorm:"size:200;not null" json:"title"`
	Description      *string                     `gorm:"type:text" json:"description"`
	Ingredients      string                      `gorm:"type:text;not null" json:"ingredients"`
	Instructions     string                      `gorm:"type:text;not null" json:"instructions"`
	IngredientsList  datatypes.JSONSlice[string] `json:"ingredients_list"`
	InstructionsList datatypes.JSONSlice[string] `json:"instructions_list"`
	CookingTime      *int                        `json:"cooking_time"`
	Servings         int                         `gorm:"not null;default:4" json:"servings"`
	Difficulty       *string                     `gorm:"size:10;index" json:"difficulty"`
	Category         *string                     `gorm:"size:50;index" json:"category"`
	IsPublished      bool                        `gorm:"not null;default:false;index:idx_recipes_published_created,priority:1" json:"is_published"`
	ImageURL         *string                     `json:"image_url"`
	CreatedAt        time.Time                   `gorm:"index:idx_recipes_published_created,priority:2" json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
	Owner            Profile                     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// SetSteps replaces both lists and recomputes the flattened text.
func (r *Recipe) SetSteps(ingredients, instructions []string) {
	r.IngredientsList = datatypes.NewJSONSlice(ingredients)
	r.InstructionsList = datatypes.NewJSONSlice(instructions)
	r.Ingredients = strings.Join(ingredients, "\n")
	r.Instructions = strings.Join(instructions, "\n")
}

// IngredientSteps returns the structured list, falling back to the flattened
// text for rows written before the list columns existed.
func (r *Recipe) IngredientSteps() []string {
	return stepsOrSplit(r.IngredientsList, r.Ingredients)
}

func (r *Recipe) InstructionSteps() []string {
	return stepsOrSplit(r.InstructionsList, r.Instructions)
}

func stepsOrSplit(list []string, text string) []string {
	if len(list) > 0 {
		return list
	}
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			steps = append(steps, line)
		}
	}
	return steps
}

// RecipeWithAuthor is a recipe joined with its owner's public fields.
type RecipeWithAuthor struct {
	Recipe
	Author *Author `json:"profiles"`
}
