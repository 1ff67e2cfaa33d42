package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindConflict:
		return fiber.StatusConflict
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes a service failure. Server-side details never reach
// the client.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(services.KindOf(err))
	code, message := "internal", ""
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		code, message = svcErr.Code, svcErr.Message
	}
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"trace_id", requestID(c),
			"user_id", identity.FromContext(c).UserID().String(),
			"action", c.Method()+" "+c.Route().Path,
			"error", err,
		)
		message = "Internal server error"
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
	})
}

var (
	errInvalidBody = &services.Error{Kind: services.KindValidation, Code: "invalid_body", Message: "Invalid request body"}
	errInvalidID   = &services.Error{Kind: services.KindValidation, Code: "invalid_id", Message: "Invalid id"}
)

// parseBody decodes and tag-validates the request body into out.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return services.ValidateStruct(out)
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
