package handlers

import (
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type InteractionHandler struct {
	interactions *services.InteractionService
}

func NewInteractionHandler(interactions *services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

func (h *InteractionHandler) LikeInfo(c *fiber.Ctx) error {
	recipeID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	info, err := h.interactions.LikeInfo(c.UserContext(), recipeID, identity.FromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(info)
}

func (h *InteractionHandler) ToggleLike(c *fiber.Ctx) error {
	recipeID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.interactions.ToggleLike(c.UserContext(), identity.FromContext(c), recipeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *InteractionHandler) ListComments(c *fiber.Ctx) error {
	recipeID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	comments, err := h.interactions.ListComments(c.UserContext(), recipeID, identity.FromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments, "count": len(comments)})
}

func (h *InteractionHandler) AddComment(c *fiber.Ctx) error {
	recipeID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req dto.CommentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	comment, err := h.interactions.AddComment(c.UserContext(), identity.FromContext(c), recipeID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *InteractionHandler) UpdateComment(c *fiber.Ctx) error {
	commentID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req dto.CommentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	comment, err := h.interactions.UpdateComment(c.UserContext(), identity.FromContext(c), commentID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

func (h *InteractionHandler) DeleteComment(c *fiber.Ctx) error {
	commentID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.interactions.DeleteComment(c.UserContext(), identity.FromContext(c), commentID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
