package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arzan03/ClubHub/internal/config"
	"github.com/arzan03/ClubHub/internal/db"
	"github.com/arzan03/ClubHub/internal/handlers"
	"github.com/arzan03/ClubHub/internal/logging"
	"github.com/arzan03/ClubHub/internal/metrics"
	"github.com/arzan03/ClubHub/internal/moderation"
	"github.com/arzan03/ClubHub/internal/queue"
	"github.com/arzan03/ClubHub/internal/ratelimit"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/arzan03/ClubHub/internal/storage"
	"github.com/arzan03/ClubHub/internal/store"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	logger, err := logging.New(cfg.Server.Development(), cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongo, err := db.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongo.Close(closeCtx); err != nil {
			logger.Warn("mongo disconnect", zap.Error(err))
		}
	}()
	if err := db.EnsureIndexes(ctx, mongo.DB); err != nil {
		return err
	}
	cols := store.NewMongoCollections(mongo.DB)
	logger.Info("connected to mongo", zap.String("database", cfg.Mongo.Database))

	images, err := storage.NewMinio(ctx, cfg.Minio, storage.Processor{
		MaxBytes: cfg.Upload.MaxBytes,
		MaxWidth: cfg.Upload.ImageMaxWidth,
	})
	if err != nil {
		return err
	}

	pub := queue.NewNoop()
	if cfg.Rabbit.URL != "" {
		rp, err := queue.NewRabbit(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			return err
		}
		pub = rp
		logger.Info("publishing domain events", zap.String("exchange", cfg.Rabbit.Exchange))
	}
	defer pub.Close()

	checks := map[string]handlers.Pinger{"mongo": mongo}
	var limiter *ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rc := ratelimit.NewRedis(cfg.Redis.Addr)
		defer rc.Close()
		checks["redis"] = rc
		limiter = &ratelimit.Limiter{
			Counter: rc,
			Limit:   cfg.Auth.RateLimitPerMin,
			Window:  time.Minute,
			Prefix:  "clubhub:login",
			Log:     logger,
		}
	} else {
		logger.Warn("REDIS_ADDR not set, login rate limiting disabled")
	}

	metrics.MustRegister()

	authSvc := &services.AuthService{Users: cols.Users, Secret: cfg.Auth.JWTSecret, TokenTTL: cfg.Auth.TokenTTL, Pub: pub, Log: logger}
	if seeded, err := authSvc.EnsureDefaultAdmin(ctx, cfg.Admin); err != nil {
		return err
	} else if seeded {
		logger.Info("default admin ready", zap.String("email", cfg.Admin.Email))
	}

	app := handlers.NewRouter(handlers.Deps{
		JWTSecret:   cfg.Auth.JWTSecret,
		CORSOrigins: cfg.Server.CORSOrigins,
		BodyLimit:   int(cfg.Upload.MaxBytes) + 1<<20,
		Log:         logger,
		Auth:        authSvc,
		Products:    &services.ProductService{Products: cols.Products},
		Events:      &services.EventService{Events: cols.Events},
		Skilling:    &services.SkillingService{Skillings: cols.Skillings},
		Community: &services.CommunityService{
			Projects: cols.Projects,
			Users:    cols.Users,
			Images:   images,
			Policy:   moderation.Policy{AdminAutoApprove: cfg.Moderation.AdminAutoApprove},
			Pub:      pub,
			Log:      logger,
		},
		Orders:       &services.OrderService{Orders: cols.Orders, Products: cols.Products, Pub: pub, Log: logger},
		Submissions:  &services.SubmissionService{Submissions: cols.Submissions, Pub: pub, Log: logger},
		Images:       images,
		LoginLimiter: limiter,
		Checks:       checks,
	})

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Address()))
		errc <- app.Listen(cfg.Server.Address())
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
