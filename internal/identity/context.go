package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const localsKey = "identity"

// Identity is the authenticated caller as resolved from the bearer token.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// FromContext returns the caller's identity, or nil for anonymous requests.
func FromContext(c *fiber.Ctx) *Identity {
	if id, ok := c.Locals(localsKey).(*Identity); ok {
		return id
	}
	return nil
}

func Set(c *fiber.Ctx, id *Identity) {
	c.Locals(localsKey, id)
}

// FromToken extracts the identity from the sub and email claims.
func FromToken(token *jwt.Token) (*Identity, error) {
	if token == nil {
		return nil, errors.New("missing token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, errors.New("missing sub claim")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, errors.New("invalid sub claim")
	}

	email, _ := claims["email"].(string)
	return &Identity{ID: id, Email: email}, nil
}

// UserID returns the id or uuid.Nil when anonymous.
func (i *Identity) UserID() uuid.UUID {
	if i == nil {
		return uuid.Nil
	}
	return i.ID
}
