package middleware

import (
	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin lets only admins through. It must run after Authenticate.
func RequireAdmin(c *fiber.Ctx) error {
	claims := Claims(c)
	if claims == nil {
		return abort(c, apperr.New(apperr.Unauthenticated, "missing token"))
	}
	if !claims.IsAdmin {
		return abort(c, apperr.New(apperr.Forbidden, "access denied, admins only"))
	}
	return c.Next()
}
