package handlers

import (
	"strings"

	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Products *services.ProductService
}

// List supports ?search= and ?inStock=true.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f := services.ProductFilter{
		Search:  c.Query("search"),
		InStock: strings.EqualFold(c.Query("inStock"), "true"),
	}
	res, err := h.Products.List(c.UserContext(), f, page(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "product")
	if err != nil {
		return err
	}
	p, err := h.Products.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var p models.Product
	if err := bind(c, &p); err != nil {
		return err
	}
	out, err := h.Products.Create(c.UserContext(), &p)
	if err != nil {
		return err
	}
	return created(c, "product created", out)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "product")
	if err != nil {
		return err
	}
	body, err := rawBody(c)
	if err != nil {
		return err
	}
	p, err := h.Products.Update(c.UserContext(), id, body)
	if err != nil {
		return err
	}
	return done(c, "product updated", p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "product")
	if err != nil {
		return err
	}
	if err := h.Products.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c, "product")
}
