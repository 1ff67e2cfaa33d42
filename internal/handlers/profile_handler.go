package handlers

import (
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profiles *services.ProfileService
	queries  *services.QueryService
}

func NewProfileHandler(profiles *services.ProfileService, queries *services.QueryService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, queries: queries}
}

func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	profile, err := h.profiles.GetOrCreate(c.UserContext(), identity.FromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	var req dto.ProfileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	profile, err := h.profiles.Update(c.UserContext(), identity.FromContext(c), services.ProfileUpdate{
		Username: req.Username,
		FullName: req.FullName,
		Bio:      req.Bio,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) Dashboard(c *fiber.Ctx) error {
	dash, err := h.queries.Dashboard(c.UserContext(), identity.FromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dash)
}

func (h *ProfileHandler) UsernameAvailable(c *fiber.Ctx) error {
	username := c.Params("username")
	available, err := h.profiles.CheckUsernameAvailable(c.UserContext(), identity.FromContext(c), username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UsernameAvailability{Username: username, Available: available})
}

// Page serves a public profile by username or id.
func (h *ProfileHandler) Page(c *fiber.Ctx) error {
	page, err := h.queries.ProfilePage(c.UserContext(), c.Params("username"), identity.FromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *ProfileHandler) Stats(c *fiber.Ctx) error {
	profile, err := h.profiles.GetPublic(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.profiles.Stats(c.UserContext(), profile.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
