package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/middleware"
	"github.com/arzan03/ClubHub/internal/moderation"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrorHandler renders every error returned by a handler as
// {"error": message, "fields": {...}}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	body := fiber.Map{"error": apperr.Message(err)}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		body["fields"] = fields
	}
	return c.Status(apperr.Status(err)).JSON(body)
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func done(c *fiber.Ctx, msg string, data any) error {
	return c.JSON(fiber.Map{"message": msg, "data": data})
}

func created(c *fiber.Ctx, msg string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg, "data": data})
}

func deleted(c *fiber.Ctx, entity string) error {
	return c.JSON(fiber.Map{"message": entity + " deleted successfully"})
}

// bind decodes the JSON body into v.
func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	return nil
}

// rawBody returns the body of a partial update. It must be a JSON object.
func rawBody(c *fiber.Ctx) ([]byte, error) {
	body := c.Body()
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, apperr.New(apperr.Validation, "invalid request body")
	}
	return body, nil
}

func pathID(c *fiber.Ctx, entity string) (primitive.ObjectID, error) {
	return services.ParseID(c.Params("id"), entity)
}

// page reads ?page= and ?limit=; bad values fall back to the defaults.
func page(c *fiber.Ctx) services.Page {
	p, _ := strconv.ParseInt(c.Query("page"), 10, 64)
	l, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	return services.NewPage(p, l)
}

// queryBool parses an optional boolean query parameter.
func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.ValidationFields("invalid "+key, map[string]string{key: key + " must be true or false"})
	}
	return &b, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates.
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.ValidationFields("invalid "+key, map[string]string{key: key + " must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
}

// caller returns the authenticated actor. Routes using it sit behind
// Authenticate, so a missing actor is an unauthenticated request.
func caller(c *fiber.Ctx) (moderation.Actor, error) {
	a := middleware.Actor(c)
	if a == nil {
		return moderation.Actor{}, apperr.New(apperr.Unauthenticated, "missing token")
	}
	return *a, nil
}

func isAdmin(c *fiber.Ctx) bool {
	a := middleware.Actor(c)
	return a != nil && a.IsAdmin
}
