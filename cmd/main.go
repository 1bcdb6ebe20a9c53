package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"

	"github.com/JhonesBR/go-ledger/internal/api"
	"github.com/JhonesBR/go-ledger/internal/api/account"
	"github.com/JhonesBR/go-ledger/internal/config"
	"github.com/JhonesBR/go-ledger/internal/db"
	"github.com/JhonesBR/go-ledger/internal/helper"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the JSON logger. The level can be changed after config is read.
func newLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func run() error {
	// Installed before config.Load so its warnings share the JSON format
	level := new(slog.LevelVar)
	slog.SetDefault(newLogger(os.Stdout, level))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level.Set(cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB connection
	pool, err := db.NewConnection(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Schema and seed row, once per start
	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}
	store := account.NewStore(pool)
	if err := account.Bootstrap(ctx, store); err != nil {
		return err
	}

	// Initialize a new Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "go-ledger " + cfg.Version,
		ErrorHandler: helper.ErrorHandler,
	})
	app.Use(recoverer.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New())

	// Initialize the API routes. In-flight requests keep their context while Shutdown drains them.
	api.InitializeRoutes(context.WithoutCancel(ctx), app, store, cfg.Version)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", cfg.ListenAddr(), "version", cfg.Version)
		errCh <- app.Listen(cfg.ListenAddr(), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	if err := app.Shutdown(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Server exited")
	return nil
}
