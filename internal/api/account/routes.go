package account

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

func InitializeRoutes(ctx context.Context, app *fiber.App, repo Repository) {
	app.Get("/balance/:account_id", GetBalanceHandler(ctx, repo))
	app.Post("/deposit", DepositHandler(ctx, repo))
	app.Post("/withdraw", WithdrawHandler(ctx, repo))
	app.Get("/accounts", GetAccountsHandler(ctx, repo))
}
