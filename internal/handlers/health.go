package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency that can report its liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports 200 when every dependency answers, 503 otherwise.
func Health(deps map[string]Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status, code := fiber.Map{}, fiber.StatusOK
		for name, p := range deps {
			if err := p.Ping(ctx); err != nil {
				status[name] = err.Error()
				code = fiber.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		state := "ok"
		if code != fiber.StatusOK {
			state = "degraded"
		}
		return c.Status(code).JSON(fiber.Map{"status": state, "checks": status})
	}
}
