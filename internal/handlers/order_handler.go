package handlers

import (
	"github.com/arzan03/ClubHub/internal/middleware"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// Create places an order for the caller. Prices come from the product
// documents, never from the request.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	var in services.OrderInput
	if err := bind(c, &in); err != nil {
		return err
	}

	buyer := services.Buyer{ID: a.UserID}
	if claims := middleware.Claims(c); claims != nil {
		buyer.Name, buyer.Email = claims.Name, claims.Email
	}
	o, err := h.Orders.Create(c.UserContext(), buyer, in)
	if err != nil {
		return err
	}
	return created(c, "order placed", o)
}

func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	res, err := h.Orders.ListMine(c.UserContext(), a.UserID, page(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	f := services.OrderFilter{Status: c.Query("status"), PaymentStatus: c.Query("paymentStatus")}
	res, err := h.Orders.ListAll(c.UserContext(), f, page(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	a, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "order")
	if err != nil {
		return err
	}
	o, err := h.Orders.Get(c.UserContext(), id, a)
	if err != nil {
		return err
	}
	return ok(c, o)
}

func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "order")
	if err != nil {
		return err
	}
	var in services.OrderUpdate
	if err := bind(c, &in); err != nil {
		return err
	}
	o, err := h.Orders.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return done(c, "order updated", o)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) SetStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "order")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	o, err := h.Orders.SetStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return err
	}
	return done(c, "order status updated", o)
}

func (h *OrderHandler) SetPayment(c *fiber.Ctx) error {
	id, err := pathID(c, "order")
	if err != nil {
		return err
	}
	var req struct {
		PaymentStatus string `json:"paymentStatus"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	o, err := h.Orders.SetPayment(c.UserContext(), id, req.PaymentStatus)
	if err != nil {
		return err
	}
	return done(c, "payment status updated", o)
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "order")
	if err != nil {
		return err
	}
	if err := h.Orders.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c, "order")
}
