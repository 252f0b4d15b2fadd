package main

import (
	"context"
	"fmt"
	"time"

	"pokeusers/internal/config"
	"pokeusers/internal/database"
	"pokeusers/internal/handlers"
	"pokeusers/internal/metrics"
	"pokeusers/internal/middleware"
	"pokeusers/internal/pokeapi"
	"pokeusers/internal/repositories"
	"pokeusers/internal/services"
	"pokeusers/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// App is the wired service: HTTP surface plus the resources it owns.
type App struct {
	Fiber   *fiber.App
	DB      *gorm.DB
	Pokemon *pokeapi.Client

	closers []func() error
	log     zerolog.Logger
}

// NewApp connects every dependency named in cfg and registers the routes.
func NewApp(cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{log: log}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	// --- Pokemon lookups ---
	cache := a.newLookupCache(cfg)
	a.Pokemon = pokeapi.NewClient(cfg.Pokemon.APIURL,
		pokeapi.WithTimeout(cfg.Pokemon.Timeout),
		pokeapi.WithCache(cache),
		pokeapi.WithLogger(log.With().Str("component", "pokeapi").Logger()),
	)

	// --- Events ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Warn().Err(err).Msg("event publishing disabled")
		} else {
			events = mq
			a.closers = append(a.closers, mq.Close)
		}
	}

	// --- Services and handlers ---
	userRepo := repositories.NewGORMUserRepository(db)
	userService := services.NewUserService(userRepo,
		services.WithBcryptCost(cfg.BcryptCost),
		services.WithUserEvents(events),
		services.WithUserLogger(log),
	)
	pokemonService := services.NewPokemonService(userRepo, a.Pokemon,
		services.WithStrictLookups(cfg.Pokemon.StrictLookups),
		services.WithPokemonEvents(events),
		services.WithPokemonLogger(log),
	)

	userHandler := handlers.NewUserHandler(userService, log)
	pokemonHandler := handlers.NewPokemonHandler(pokemonService, log)

	app := newFiber(cfg, log)
	if cfg.MetricsEnabled {
		app.Use(middleware.Metrics())
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	}

	app.Get("/health", a.handleHealth)

	apiV1 := app.Group("/api/v1")
	userHandler.RegisterRoutes(apiV1)
	pokemonHandler.RegisterRoutes(apiV1)

	a.Fiber = app
	return a, nil
}

// newFiber builds the fiber app with the middleware every route shares.
func newFiber(cfg *config.Config, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "pokeusers",
		DisableStartupMessage: cfg.Production(),
		ErrorHandler:          handlers.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	return app
}

func (a *App) newLookupCache(cfg *config.Config) pokeapi.Cache {
	if cfg.Pokemon.CacheBackend != "redis" {
		return pokeapi.NewMemoryCache(cfg.Pokemon.CacheTTL)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		a.log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, lookups will bypass the cache until it recovers")
	}
	a.closers = append(a.closers, rdb.Close)
	return pokeapi.NewRedisCache(rdb, cfg.Pokemon.CacheTTL, a.log)
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	status, code := "healthy", fiber.StatusOK
	sqlDB, err := a.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		status, code = "unhealthy", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Close releases everything NewApp opened, in reverse order.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close resource: %w", err)
		}
	}
	return firstErr
}
