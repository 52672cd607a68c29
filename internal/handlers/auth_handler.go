package handlers

import (
	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.Auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, "user registered successfully", user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentials
	if err := bind(c, &req); err != nil {
		return err
	}

	s, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "login successful", "token": s.Token, "user": s.User})
}

// AdminLogin issues a token only to accounts with the admin flag.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req credentials
	if err := bind(c, &req); err != nil {
		return err
	}

	s, err := h.Auth.AdminLogin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "admin login successful", "token": s.Token, "user": s.User})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	u, err := h.Auth.Me(c.UserContext(), a.UserID)
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperr.ValidationFields("currentPassword and newPassword are required", map[string]string{
			"currentPassword": "currentPassword is required",
			"newPassword":     "newPassword is required",
		})
	}

	if err := h.Auth.ChangePassword(c.UserContext(), a.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}
