package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

const (
	DefaultAccountID   int64 = 1
	DefaultAccountName       = "Test User"
)

var DefaultAccountBalance = decimal.NewFromInt(1000)

type seeder interface {
	CreateIfAbsent(ctx context.Context, id int64, name string, balance decimal.Decimal) (bool, error)
}

// Bootstrap seeds the default account on a fresh database. Call it once at
// start, after the schema exists.
func Bootstrap(ctx context.Context, store seeder) error {
	created, err := store.CreateIfAbsent(ctx, DefaultAccountID, DefaultAccountName, DefaultAccountBalance)
	if err != nil {
		return fmt.Errorf("failed to seed default account: %w", err)
	}
	if created {
		slog.Info("Seeded default account", "account_id", DefaultAccountID, "balance", DefaultAccountBalance.String())
	}
	return nil
}
