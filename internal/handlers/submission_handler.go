package handlers

import (
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SubmissionHandler struct {
	Submissions *services.SubmissionService
}

// Create is public: students submit without an account.
func (h *SubmissionHandler) Create(c *fiber.Ctx) error {
	var sub models.Submission
	if err := bind(c, &sub); err != nil {
		return err
	}
	out, err := h.Submissions.Create(c.UserContext(), &sub)
	if err != nil {
		return err
	}
	return created(c, "submission received", out)
}

func (h *SubmissionHandler) List(c *fiber.Ctx) error {
	res, err := h.Submissions.List(c.UserContext(), c.Query("search"), page(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *SubmissionHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "submission")
	if err != nil {
		return err
	}
	sub, err := h.Submissions.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, sub)
}

func (h *SubmissionHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "submission")
	if err != nil {
		return err
	}
	if err := h.Submissions.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c, "submission")
}
