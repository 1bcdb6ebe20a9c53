package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/JhonesBR/go-ledger/internal/api/account"
	"github.com/JhonesBR/go-ledger/internal/helper"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Store interface {
	account.Repository
	Pinger
}

func InitializeRoutes(ctx context.Context, app *fiber.App, store Store, version string) {
	app.Get("/version", VersionHandler(version))
	app.Get("/health", HealthHandler(ctx, store))

	account.InitializeRoutes(ctx, app, store)
}

func VersionHandler(version string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.SendString(version)
	}
}

func HealthHandler(ctx context.Context, db Pinger) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := db.Ping(ctx); err != nil {
			slog.Error("Health check failed", "error", err)
			return helper.Error(c, fiber.StatusServiceUnavailable, "database unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
