package account

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/JhonesBR/go-ledger/internal/helper"
)

// Repository is the persistence the handlers need. *Store implements it.
type Repository interface {
	Get(ctx context.Context, id int64) (Account, error)
	List(ctx context.Context, limit, offset int) ([]Account, int, error)
	Mutate(ctx context.Context, id int64, operation string, fn Mutation) (Account, error)
}

func GetBalanceHandler(ctx context.Context, repo Repository) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("account_id"), 10, 64)
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(c.Params("account_id"), "-") {
			return respondError(c, ErrNotFound)
		}
		if err != nil || id < 1 {
			return helper.Error(c, fiber.StatusBadRequest, ErrInvalidID.Error())
		}
		// Positive ids past the column range cannot exist
		if !InRange(id) {
			return respondError(c, ErrNotFound)
		}

		acc, err := repo.Get(ctx, id)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(newBalanceResponse(acc))
	}
}

func DepositHandler(ctx context.Context, repo Repository) fiber.Handler {
	return func(c fiber.Ctx) error {
		var deposit DepositSchema
		if err := c.Bind().Body(&deposit); err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
		}
		if err := helper.ValidateInput(&deposit); err != nil {
			return helper.Error(c, fiber.StatusBadRequest, ErrMissingFields.Error())
		}
		if deposit.Amount == nil || !ValidAmount(*deposit.Amount) {
			return helper.Error(c, fiber.StatusBadRequest, ErrInvalidAmount.Error())
		}
		if !InRange(*deposit.AccountId) {
			return respondError(c, ErrNotFound)
		}

		amount := *deposit.Amount
		acc, err := repo.Mutate(ctx, *deposit.AccountId, "deposit", func(a Account) (Account, error) {
			return a.Deposit(amount)
		})
		if err != nil {
			return respondError(c, err)
		}

		slog.Info("Deposit committed", "account_id", acc.Id, "amount", amount.String(), "balance", acc.Balance.String())
		return c.JSON(newBalanceResponse(acc))
	}
}

func WithdrawHandler(ctx context.Context, repo Repository) fiber.Handler {
	return func(c fiber.Ctx) error {
		var withdraw WithdrawSchema
		if err := c.Bind().Body(&withdraw); err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
		}
		if err := helper.ValidateInput(&withdraw); err != nil {
			return helper.Error(c, fiber.StatusBadRequest, ErrMissingFields.Error())
		}
		if !ValidAmount(*withdraw.Amount) {
			return helper.Error(c, fiber.StatusBadRequest, ErrInvalidAmount.Error())
		}
		if !InRange(*withdraw.AccountId) {
			return respondError(c, ErrNotFound)
		}

		amount := *withdraw.Amount
		acc, err := repo.Mutate(ctx, *withdraw.AccountId, "withdraw", func(a Account) (Account, error) {
			return a.Withdraw(amount)
		})
		if err != nil {
			if errors.Is(err, ErrInsufficientFunds) {
				slog.Warn("Withdrawal rejected", "account_id", *withdraw.AccountId, "amount", amount.String())
			}
			return respondError(c, err)
		}

		slog.Info("Withdrawal committed", "account_id", acc.Id, "amount", amount.String(), "balance", acc.Balance.String())
		return c.JSON(newBalanceResponse(acc))
	}
}

func GetAccountsHandler(ctx context.Context, repo Repository) fiber.Handler {
	return func(c fiber.Ctx) error {
		// Get pagination
		pagination := helper.GetPagination[AccountShowSchema](c)

		accounts, total, err := repo.List(ctx, pagination.Size, pagination.Offset())
		if err != nil {
			return err
		}
		pagination.Total = &total

		for _, acc := range accounts {
			pagination.Items = append(pagination.Items, newAccountShow(acc))
		}

		return c.JSON(pagination)
	}
}

// respondError maps domain errors to their status code. Anything else goes
// to the app error handler as a 500.
func respondError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return helper.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInsufficientFunds):
		return helper.Error(c, fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}

var _ Repository = (*Store)(nil)
