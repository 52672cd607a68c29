package handlers

import (
	"time"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/logging"
	"github.com/arzan03/ClubHub/internal/metrics"
	"github.com/arzan03/ClubHub/internal/middleware"
	"github.com/arzan03/ClubHub/internal/ratelimit"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/arzan03/ClubHub/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	JWTSecret   string
	CORSOrigins string
	BodyLimit   int
	Log         *zap.Logger

	Auth        *services.AuthService
	Products    *services.ProductService
	Events      *services.EventService
	Skilling    *services.SkillingService
	Community   *services.CommunityService
	Orders      *services.OrderService
	Submissions *services.SubmissionService
	Images      storage.ImageStore

	// LoginLimiter throttles the login endpoints. Nil disables it.
	LoginLimiter *ratelimit.Limiter
	Checks       map[string]Pinger
}

func NewRouter(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               "clubhub",
		ErrorHandler:          ErrorHandler,
		BodyLimit:             d.BodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(accessLog(d.Log))
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(compress.New())
	app.Use(etag.New())

	app.Get("/healthz", Health(d.Checks))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authn := middleware.Authenticate(d.JWTSecret)
	optional := middleware.OptionalAuth(d.JWTSecret)
	admin := []fiber.Handler{authn, middleware.RequireAdmin}
	limit := d.LoginLimiter.Handler()

	api := app.Group("/api")

	ah := &AuthHandler{Auth: d.Auth}
	a := api.Group("/auth")
	a.Post("/register", ah.Register)
	a.Post("/login", limit, ah.Login)
	a.Get("/me", authn, ah.Me)
	a.Put("/password", authn, ah.ChangePassword)

	api.Post("/admin/login", limit, ah.AdminLogin)
	adm := &AdminHandler{Auth: d.Auth}
	users := api.Group("/admin/users", admin...)
	users.Get("/", adm.ListUsers)
	users.Patch("/:id/admin", adm.ToggleAdmin)
	users.Delete("/:id", adm.DeleteUser)

	ph := &ProductHandler{Products: d.Products}
	p := api.Group("/products")
	p.Get("/", ph.List)
	p.Get("/:id", ph.Get)
	p.Post("/", append(admin, ph.Create)...)
	p.Put("/:id", append(admin, ph.Update)...)
	p.Delete("/:id", append(admin, ph.Delete)...)

	eh := &EventHandler{Events: d.Events}
	e := api.Group("/events")
	e.Get("/public", eh.ListPublic)
	e.Get("/", append(admin, eh.ListAll)...)
	e.Get("/:id", optional, eh.Get)
	e.Post("/", append(admin, eh.Create)...)
	e.Put("/:id", append(admin, eh.Update)...)
	e.Patch("/:id/publish", append(admin, eh.TogglePublished)...)
	e.Delete("/:id", append(admin, eh.Delete)...)

	sh := &SkillingHandler{Skillings: d.Skilling}
	s := api.Group("/skilling")
	s.Get("/public", sh.ListPublic)
	s.Get("/", append(admin, sh.ListAll)...)
	s.Get("/:id", optional, sh.Get)
	s.Post("/", append(admin, sh.Create)...)
	s.Put("/:id", append(admin, sh.Update)...)
	s.Patch("/:id/publish", append(admin, sh.TogglePublished)...)
	s.Delete("/:id", append(admin, sh.Delete)...)

	ch := &CommunityHandler{Community: d.Community}
	cm := api.Group("/community")
	cm.Get("/public", ch.ListPublic)
	cm.Get("/mine", authn, ch.ListMine)
	cm.Get("/", append(admin, ch.ListAll)...)
	cm.Get("/:id", optional, ch.Get)
	cm.Post("/", authn, ch.Create)
	cm.Put("/:id", authn, ch.Update)
	cm.Patch("/:id/status", append(admin, ch.Moderate)...)
	cm.Delete("/:id", authn, ch.Delete)

	oh := &OrderHandler{Orders: d.Orders}
	o := api.Group("/orders")
	o.Post("/", authn, oh.Create)
	o.Get("/mine", authn, oh.ListMine)
	o.Get("/", append(admin, oh.ListAll)...)
	o.Get("/:id", authn, oh.Get)
	o.Put("/:id", append(admin, oh.Update)...)
	o.Patch("/:id/status", append(admin, oh.SetStatus)...)
	o.Patch("/:id/payment", append(admin, oh.SetPayment)...)
	o.Delete("/:id", append(admin, oh.Delete)...)

	subh := &SubmissionHandler{Submissions: d.Submissions}
	sub := api.Group("/submissions")
	sub.Post("/", subh.Create)
	sub.Get("/", append(admin, subh.List)...)
	sub.Get("/:id", append(admin, subh.Get)...)
	sub.Delete("/:id", append(admin, subh.Delete)...)

	fh := &FileHandler{Images: d.Images}
	up := api.Group("/uploads")
	up.Post("/", authn, fh.Upload)
	up.Get("/:namespace/:id", fh.URL)
	up.Delete("/:namespace/:id", append(admin, fh.Delete)...)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "route not found")
	})
	return app
}

// accessLog writes one structured line per request.
func accessLog(base *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log := logging.WithRequest(base, c.GetRespHeader(fiber.HeaderXRequestID))
		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = apperr.Status(err)
			}
		}
		fields = append(fields, zap.Int("status", status))

		switch {
		case err != nil && status >= fiber.StatusInternalServerError:
			log.Error("request failed", fields...)
		case err != nil:
			log.Info("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
		return err
	}
}
