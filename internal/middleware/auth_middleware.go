package middleware

import (
	"strings"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/auth"
	"github.com/arzan03/ClubHub/internal/moderation"
	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// Authenticate validates the bearer token and stores its claims for the
// next handlers.
func Authenticate(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsFromHeader(c, secret)
		if err != nil {
			return abort(c, err)
		}
		if claims == nil {
			return abort(c, apperr.New(apperr.Unauthenticated, "missing token"))
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// OptionalAuth decodes a token when one is sent. Anonymous requests pass
// through; a bad token is still rejected.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsFromHeader(c, secret)
		if err != nil {
			return abort(c, err)
		}
		if claims != nil {
			c.Locals(claimsKey, claims)
		}
		return c.Next()
	}
}

func claimsFromHeader(c *fiber.Ctx, secret string) (*auth.Claims, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return nil, nil
	}

	// Ensure it's a Bearer token
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, apperr.New(apperr.Unauthenticated, "invalid token format")
	}
	return auth.Parse(secret, token)
}

// Claims returns the caller's claims, or nil for anonymous requests.
func Claims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsKey).(*auth.Claims)
	return claims
}

// Actor returns the caller as a moderation actor, or nil when anonymous.
func Actor(c *fiber.Ctx) *moderation.Actor {
	claims := Claims(c)
	if claims == nil {
		return nil
	}
	id, err := claims.ObjectID()
	if err != nil {
		return nil
	}
	return &moderation.Actor{UserID: id, IsAdmin: claims.IsAdmin}
}

func abort(c *fiber.Ctx, err error) error {
	return c.Status(apperr.Status(err)).JSON(fiber.Map{"error": apperr.Message(err)})
}
