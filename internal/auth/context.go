package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// CustomerIDFromCtx pulls the authenticated customer id out of the JWT
// placed in locals by the jwt middleware. It fails closed: anything other
// than a positive integer claim is rejected.
func CustomerIDFromCtx(c *fiber.Ctx) (int, error) {
	u := c.Locals("user")
	if u == nil {
		return 0, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}

	raw, ok := claims["customer_id"]
	if !ok {
		// older tokens carry the id under user_id
		raw, ok = claims["user_id"]
	}
	if !ok {
		return 0, fiber.ErrUnauthorized
	}

	var id int
	switch v := raw.(type) {
	case float64:
		id = int(v)
	case int:
		id = v
	case int64:
		id = int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fiber.ErrUnauthorized
		}
		id = parsed
	default:
		return 0, fiber.ErrUnauthorized
	}

	if id <= 0 {
		return 0, fiber.ErrUnauthorized
	}
	return id, nil
}
