package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"searchlight/config"
	"searchlight/db"
	"searchlight/handlers"
	"searchlight/hooks"
	middleware "searchlight/middlewares"
	"searchlight/models"
	"searchlight/query"
	"searchlight/search"
)

// Version is set via ldflags during build
var Version = "dev"

var CLI struct {
	Serve       ServeCmd       `cmd:"" help:"Start the Searchlight server" default:"1"`
	SyncIndexes SyncIndexesCmd `cmd:"" name:"sync-indexes" help:"Create the search index for every indexable entity"`
	Version     VersionCmd     `cmd:"" help:"Show version information"`
}

type ServeCmd struct {
	MasterKey   string `help:"Master key for authentication (overrides SEARCHLIGHT_MASTER_KEY env var)" env:"SEARCHLIGHT_MASTER_KEY"`
	DataPath    string `help:"Path to index data directory (overrides DATA_PATH env var)" env:"DATA_PATH" default:"./data"`
	DatabaseURL string `help:"PostgreSQL connection string (overrides DATABASE_URL env var)" env:"DATABASE_URL"`
}

func (s *ServeCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if s.MasterKey != "" {
		cfg.MasterKey = s.MasterKey
	}
	if s.DataPath != "" {
		cfg.DataPath = s.DataPath
	}
	if s.DatabaseURL != "" {
		cfg.DatabaseURL = s.DatabaseURL
	}

	zapLogger, err := newLogger(cfg)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting Searchlight",
		zap.String("port", cfg.Port),
		zap.Bool("auth_enabled", cfg.RequiresAuth()),
		zap.String("data_path", cfg.DataPath),
		zap.Bool("auto_index", cfg.AutoIndex),
		zap.Bool("debug", cfg.Debug),
	)

	app, cleanup, err := buildApp(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer cleanup()

	zapLogger.Info("Server starting", zap.String("address", ":"+cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
		return err
	}
	return nil
}

// SyncIndexesCmd is the schema-migration-complete hook: it ensures every
// indexable entity type has its index created and exits non-zero on a
// rejected mapping.
type SyncIndexesCmd struct {
	DataPath string `help:"Path to index data directory (overrides DATA_PATH env var)" env:"DATA_PATH" default:"./data"`
}

func (s *SyncIndexesCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if s.DataPath != "" {
		cfg.DataPath = s.DataPath
	}

	zapLogger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	registry, err := models.LoadRegistry(cfg.EntitiesFile, cfg.DefaultIndex)
	if err != nil {
		return err
	}

	backend := search.NewBleveBackend(cfg.DataPath, zapLogger)
	defer backend.Close()

	dispatcher := hooks.NewDispatcher(registry, backend, true, zapLogger)
	if err := dispatcher.MigrationComplete(context.Background()); err != nil {
		return fmt.Errorf("index sync failed: %w", err)
	}

	zapLogger.Info("Indexes synced", zap.Int("entities", len(registry.Indexable())))
	return nil
}

type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Printf("Searchlight %s\n", Version)
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogLevel == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildApp wires the registry, search backend, database store, lifecycle
// hooks and HTTP handlers together.
func buildApp(cfg *config.Config, zapLogger *zap.Logger) (*fiber.App, func(), error) {
	registry, err := models.LoadRegistry(cfg.EntitiesFile, cfg.DefaultIndex)
	if err != nil {
		return nil, nil, err
	}

	backend := search.NewBleveBackend(cfg.DataPath, zapLogger)

	// Open existing indexes up front so reads work immediately; creation of
	// missing indexes stays an explicit sync-indexes step.
	for _, entity := range registry.Indexable() {
		if err := backend.EnsureIndex(entity); err != nil {
			zapLogger.Warn("Index not available at startup",
				zap.String("entity", entity.Name),
				zap.Error(err))
		}
	}

	connector := db.NewConnector(db.ConnectorConfig{
		DSN:         cfg.DatabaseURL,
		MaxConns:    cfg.DBMaxConns,
		ConnTimeout: cfg.DBConnTimeout,
	}, zapLogger)
	if err := connector.Connect(context.Background()); err != nil {
		backend.Close()
		return nil, nil, err
	}

	store := db.NewStore(connector.Pool(), zapLogger)
	dispatcher := hooks.NewDispatcher(registry, backend, cfg.AutoIndex, zapLogger)
	store.SetObserver(dispatcher)

	cleanup := func() {
		connector.Close()
		backend.Close()
	}

	handlerCtx := &handlers.HandlerContext{
		Config:     cfg,
		Registry:   registry,
		Backend:    backend,
		Store:      store,
		Dispatcher: dispatcher,
		Translator: query.NewTranslator(cfg.SearchParam),
		Logger:     zapLogger,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			zapLogger.Error("Request error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Use(func(c *fiber.Ctx) error {
		handlers.SetContext(c, handlerCtx)
		return c.Next()
	})

	// Prometheus metrics (before auth to allow scraping without authentication)
	prometheus := fiberprometheus.New("searchlight")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Use(middleware.Authorization(cfg, zapLogger))

	app.Get("/health", handlers.Health)
	app.Get("/entities", handlers.ListEntities)
	app.Post("/admin/sync-indexes", handlers.SyncIndexes)

	entities := app.Group("/entities/:entity")
	{
		entities.Get("/records", handlers.ListRecords)
		entities.Post("/records", handlers.CreateRecord)
		entities.Post("/records/bulk", handlers.BulkLoadRecords)
		entities.Get("/records/:id", handlers.RetrieveRecord)
		entities.Patch("/records/:id", handlers.UpdateRecord)
		entities.Delete("/records/:id", handlers.DeleteRecord)

		entities.Get("/completions", handlers.CompleteRecords)
		entities.Post("/reindex", handlers.ReindexEntity)
	}

	return app, cleanup, nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("searchlight"),
		kong.Description("Mirrors PostgreSQL entities into full-text search indexes and serves queries with database fallback"),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
