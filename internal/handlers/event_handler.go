package handlers

import (
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/gofiber/fiber/v2"
)

type EventHandler struct {
	Events *services.EventService
}

func eventFilter(c *fiber.Ctx) (services.EventFilter, error) {
	from, err := queryTime(c, "from")
	if err != nil {
		return services.EventFilter{}, err
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return services.EventFilter{}, err
	}
	published, err := queryBool(c, "published")
	if err != nil {
		return services.EventFilter{}, err
	}
	return services.EventFilter{
		From:      from,
		To:        to,
		Tag:       c.Query("tag"),
		Search:    c.Query("search"),
		Published: published,
	}, nil
}

func (h *EventHandler) ListPublic(c *fiber.Ctx) error {
	f, err := eventFilter(c)
	if err != nil {
		return err
	}
	res, err := h.Events.ListPublic(c.UserContext(), f, page(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *EventHandler) ListAll(c *fiber.Ctx) error {
	f, err := eventFilter(c)
	if err != nil {
		return err
	}
	res, err := h.Events.ListAll(c.UserContext(), f, page(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *EventHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "event")
	if err != nil {
		return err
	}
	e, err := h.Events.Get(c.UserContext(), id, isAdmin(c))
	if err != nil {
		return err
	}
	return ok(c, e)
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	var e models.Event
	if err := bind(c, &e); err != nil {
		return err
	}
	out, err := h.Events.Create(c.UserContext(), &e)
	if err != nil {
		return err
	}
	return created(c, "event created", out)
}

func (h *EventHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "event")
	if err != nil {
		return err
	}
	body, err := rawBody(c)
	if err != nil {
		return err
	}
	e, err := h.Events.Update(c.UserContext(), id, body)
	if err != nil {
		return err
	}
	return done(c, "event updated", e)
}

func (h *EventHandler) TogglePublished(c *fiber.Ctx) error {
	id, err := pathID(c, "event")
	if err != nil {
		return err
	}
	e, err := h.Events.TogglePublished(c.UserContext(), id)
	if err != nil {
		return err
	}
	msg := "event unpublished"
	if e.Published {
		msg = "event published"
	}
	return done(c, msg, e)
}

func (h *EventHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "event")
	if err != nil {
		return err
	}
	if err := h.Events.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c, "event")
}
