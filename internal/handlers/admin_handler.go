package handlers

import (
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler manages user accounts.
type AdminHandler struct {
	Auth *services.AuthService
}

// ListUsers pages through every account; ?search= matches name or email.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Auth.ListUsers(c.UserContext(), c.Query("search"), page(c))
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *AdminHandler) ToggleAdmin(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "user")
	if err != nil {
		return err
	}

	u, err := h.Auth.ToggleAdmin(c.UserContext(), a.UserID, id)
	if err != nil {
		return err
	}
	return done(c, "admin status updated", u)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "user")
	if err != nil {
		return err
	}

	if err := h.Auth.DeleteUser(c.UserContext(), a.UserID, id); err != nil {
		return err
	}
	return deleted(c, "user")
}
