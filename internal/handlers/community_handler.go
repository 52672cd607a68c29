package handlers

import (
	"github.com/arzan03/ClubHub/internal/middleware"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CommunityHandler struct {
	Community *services.CommunityService
}

func projectFilter(c *fiber.Ctx) services.ProjectFilter {
	return services.ProjectFilter{
		Status: c.Query("status"),
		Tag:    c.Query("tag"),
		Search: c.Query("search"),
	}
}

// ListPublic returns approved projects.
func (h *CommunityHandler) ListPublic(c *fiber.Ctx) error {
	res, err := h.Community.ListPublic(c.UserContext(), projectFilter(c), page(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *CommunityHandler) ListMine(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	res, err := h.Community.ListMine(c.UserContext(), a.UserID, projectFilter(c), page(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// ListAll is the moderation queue.
func (h *CommunityHandler) ListAll(c *fiber.Ctx) error {
	res, err := h.Community.ListAll(c.UserContext(), projectFilter(c), page(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *CommunityHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "project")
	if err != nil {
		return err
	}
	p, err := h.Community.Get(c.UserContext(), id, middleware.Actor(c))
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *CommunityHandler) Create(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	var in services.ProjectInput
	if err := bind(c, &in); err != nil {
		return err
	}

	p, err := h.Community.Create(c.UserContext(), a, in)
	if err != nil {
		return err
	}
	return created(c, "project submitted", p)
}

func (h *CommunityHandler) Update(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "project")
	if err != nil {
		return err
	}
	body, err := rawBody(c)
	if err != nil {
		return err
	}

	p, err := h.Community.Update(c.UserContext(), a, id, body)
	if err != nil {
		return err
	}
	return done(c, "project updated", p)
}

// Moderate approves or rejects a pending project.
func (h *CommunityHandler) Moderate(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "project")
	if err != nil {
		return err
	}
	var req struct {
		Status          string `json:"status"`
		RejectionReason string `json:"rejectionReason"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := h.Community.Moderate(c.UserContext(), a, id, req.Status, req.RejectionReason)
	if err != nil {
		return err
	}
	return done(c, "project "+string(p.Status), p)
}

// Delete removes the project, then its images. Image failures are reported
// in imageCleanup with a 200.
func (h *CommunityHandler) Delete(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "project")
	if err != nil {
		return err
	}

	res, err := h.Community.Delete(c.UserContext(), a, id)
	if err != nil {
		return err
	}
	msg := "project deleted successfully"
	if !res.ImageCleanup.OK() {
		msg = "project deleted, some images could not be removed"
	}
	return c.JSON(fiber.Map{"message": msg, "imageCleanup": res.ImageCleanup})
}
