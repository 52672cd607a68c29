package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/products/:id", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	})

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("/api/products/:id", "GET", "404"))
	for _, id := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/products/"+id, nil))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("/api/products/:id", "GET", "404"))
	if after-before != 2 {
		t.Errorf("requests counted = %v, want 2", after-before)
	}
	if got := testutil.ToFloat64(InFlight); got != 0 {
		t.Errorf("in flight = %v after requests finished", got)
	}
}
