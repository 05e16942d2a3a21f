package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// ContextKey is where jwtware stores the verified token.
const ContextKey = "user"

func token(c *fiber.Ctx) (*jwt.Token, bool) {
	tok, ok := c.Locals(ContextKey).(*jwt.Token)
	return tok, ok && tok != nil
}

// BuyerIDFromCtx returns the buyer id carried by the user_id (or sub) claim.
func BuyerIDFromCtx(c *fiber.Ctx) (string, error) {
	tok, ok := token(c)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.ErrUnauthorized
	}

	raw, ok := claims["user_id"]
	if !ok {
		raw, ok = claims["sub"]
	}
	if !ok {
		return "", fiber.ErrUnauthorized
	}

	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", fiber.ErrUnauthorized
		}
		return v, nil
	case float64:
		return strconv.FormatInt(int64(v), 10), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return "", fiber.ErrUnauthorized
	}
}

// TokenFromCtx returns the raw bearer token, forwarded to the order service.
func TokenFromCtx(c *fiber.Ctx) string {
	tok, ok := token(c)
	if !ok {
		return ""
	}
	return tok.Raw
}
