package handlers

import (
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type RecipeHandler struct {
	recipes *services.RecipeService
	queries *services.QueryService
}

func NewRecipeHandler(recipes *services.RecipeService, queries *services.QueryService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, queries: queries}
}

// List serves the community feed: ?category=&difficulty=&search=&sort=&page=&limit=
func (h *RecipeHandler) List(c *fiber.Ctx) error {
	sort := c.Query("sort")
	if sort == "" {
		sort = c.Query("sortBy")
	}
	filter := services.ListFilter{
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
		Search:     c.Query("search"),
		SortBy:     sort,
		Limit:      c.QueryInt("limit", services.DefaultPageSize),
	}.Normalize()
	filter.Offset = services.PageOffset(c.QueryInt("page", 1), filter.Limit)

	page, err := h.queries.Feed(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *RecipeHandler) Get(c *fiber.Ctx) error {
	recipeID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	detail, err := h.queries.RecipeDetail(c.UserContext(), recipeID, identity.FromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

func (h *RecipeHandler) Create(c *fiber.Ctx) error {
	var req dto.RecipeRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	recipe, err := h.recipes.Create(c.UserContext(), identity.FromContext(c), recipeInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	recipeID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req dto.RecipeRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	recipe, err := h.recipes.Update(c.UserContext(), identity.FromContext(c), recipeID, recipeInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

func (h *RecipeHandler) Delete(c *fiber.Ctx) error {
	recipeID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.recipes.Delete(c.UserContext(), identity.FromContext(c), recipeID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Mine lists the caller's recipes, drafts included.
func (h *RecipeHandler) Mine(c *fiber.Ctx) error {
	id := identity.FromContext(c)
	if id == nil {
		return respondError(c, services.ErrUnauthenticated)
	}

	recipes, err := h.recipes.ListByUser(c.UserContext(), id.ID, true, 0)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"recipes": recipes})
}

func recipeInput(req dto.RecipeRequest) services.RecipeInput {
	return services.RecipeInput{
		Title:            req.Title,
		Description:      req.Description,
		IngredientsList:  req.IngredientsList,
		InstructionsList: req.InstructionsList,
		CookingTime:      req.CookingTime,
		Servings:         req.Servings,
		Difficulty:       req.Difficulty,
		Category:         req.Category,
		IsPublished:      req.IsPublished,
	}
}
