package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"cafe/internal/auth"
	"cafe/internal/database"
	"cafe/internal/handlers"
	"cafe/internal/services"
	"cafe/pkg/config"
	"cafe/pkg/logger"
	"cafe/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	// --- Store ---
	ctx := context.Background()
	store, err := database.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("error closing store")
		}
	}()

	codec, err := auth.NewTokenCodec(cfg.Token.Seed)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token codec")
	}

	// --- Events (optional) ---
	var events services.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		mqLog := log.Named("rabbitmq")
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange}, mqLog)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		events = mqClient

		if err := mqClient.ConsumeEvents(rabbitmq.AuditQueue, rabbitmq.AuditHandler(mqLog)); err != nil {
			log.Error().Err(err).Msg("failed to start audit consumer")
		}
	} else {
		log.Info().Msg("RABBITMQ_URL not set, domain events disabled")
	}

	app := newApp(cfg, store, codec, events, log)

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.App.Port).Str("store", cfg.Store.Driver).Msg("starting server")
		if err := app.Listen(cfg.App.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}

// newApp wires services, middleware and routes into a fiber app.
func newApp(cfg *config.Config, store *database.Store, codec *auth.TokenCodec, events services.EventPublisher, log *logger.Logger) *fiber.App {
	app := fiber.New(handlers.FiberConfig(cfg.App.Name, log))

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"ok":     true,
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handlers.Register(app, handlers.Dependencies{
		Categorias: services.NewCategoryService(store.Categorias, events, log.Named("categorias")),
		Productos:  services.NewProductService(store.Productos, store.Categorias, events, log.Named("productos")),
		Decoder:    codec,
		UploadsDir: cfg.Uploads.Dir,
		Log:        log,
	})
	return app
}
