package handlers

import (
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SkillingHandler struct {
	Skillings *services.SkillingService
}

func skillingFilter(c *fiber.Ctx) (services.SkillingFilter, error) {
	published, err := queryBool(c, "published")
	if err != nil {
		return services.SkillingFilter{}, err
	}
	return services.SkillingFilter{
		Difficulty: c.Query("difficulty"),
		Tag:        c.Query("tag"),
		Search:     c.Query("search"),
		Published:  published,
	}, nil
}

func (h *SkillingHandler) ListPublic(c *fiber.Ctx) error {
	f, err := skillingFilter(c)
	if err != nil {
		return err
	}
	res, err := h.Skillings.ListPublic(c.UserContext(), f, page(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *SkillingHandler) ListAll(c *fiber.Ctx) error {
	f, err := skillingFilter(c)
	if err != nil {
		return err
	}
	res, err := h.Skillings.ListAll(c.UserContext(), f, page(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *SkillingHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "skilling")
	if err != nil {
		return err
	}
	sk, err := h.Skillings.Get(c.UserContext(), id, isAdmin(c))
	if err != nil {
		return err
	}
	return ok(c, sk)
}

func (h *SkillingHandler) Create(c *fiber.Ctx) error {
	var sk models.Skilling
	if err := bind(c, &sk); err != nil {
		return err
	}
	out, err := h.Skillings.Create(c.UserContext(), &sk)
	if err != nil {
		return err
	}
	return created(c, "skilling created", out)
}

func (h *SkillingHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "skilling")
	if err != nil {
		return err
	}
	body, err := rawBody(c)
	if err != nil {
		return err
	}
	sk, err := h.Skillings.Update(c.UserContext(), id, body)
	if err != nil {
		return err
	}
	return done(c, "skilling updated", sk)
}

func (h *SkillingHandler) TogglePublished(c *fiber.Ctx) error {
	id, err := pathID(c, "skilling")
	if err != nil {
		return err
	}
	sk, err := h.Skillings.TogglePublished(c.UserContext(), id)
	if err != nil {
		return err
	}
	msg := "skilling unpublished"
	if sk.Published {
		msg = "skilling published"
	}
	return done(c, msg, sk)
}

func (h *SkillingHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "skilling")
	if err != nil {
		return err
	}
	if err := h.Skillings.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c, "skilling")
}
