package dto

// RecipeRequest is the body of create and update. Domain rules (trimmed
// title length, non-empty steps, difficulty values) are checked by the
// recipe service; the tags here only bound sizes. An omitted is_published
// saves a draft.
type RecipeRequest struct {
	Title            string   `json:"title" validate:"max=200"`
	Description      *string  `json:"description" validate:"omitempty,max=2000"`
	IngredientsList  []string `json:"ingredients_list" validate:"max=100,dive,max=500"`
	InstructionsList []string `json:"instructions_list" validate:"max=100,dive,max=2000"`
	CookingTime      *int     `json:"cooking_time"`
	Servings         *int     `json:"servings"`
	Difficulty       *string  `json:"difficulty" validate:"omitempty,max=20"`
	Category         *string  `json:"category" validate:"omitempty,max=50"`
	IsPublished      bool     `json:"is_published"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type ProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,max=50"`
	FullName *string `json:"full_name"`
	Bio      *string `json:"bio"`
}

type UsernameAvailability struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}
