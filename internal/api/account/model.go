package account

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// MaxID is the largest id the INTEGER id column can hold.
const MaxID = math.MaxInt32

var (
	ErrNotFound          = errors.New("account not found")
	ErrInvalidID         = errors.New("invalid account id")
	ErrInvalidAmount     = errors.New("Invalid amount")
	ErrMissingFields     = errors.New("account_id and amount are required")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

type Account struct {
	Id      int64           `json:"id"`
	Name    *string         `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// ValidAmount reports whether amount is positive and fits the FLOAT column.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && fitsFloat(amount)
}

// InRange reports whether id can exist in the account table.
func InRange(id int64) bool {
	return id >= 1 && id <= MaxID
}

// Deposit returns a copy of the account with amount added to the balance.
// A result too large for the FLOAT column is rejected.
func (a Account) Deposit(amount decimal.Decimal) (Account, error) {
	if !ValidAmount(amount) {
		return a, ErrInvalidAmount
	}
	next := a.Balance.Add(amount)
	if !fitsFloat(next) {
		return a, ErrInvalidAmount
	}
	a.Balance = next
	return a, nil
}

// Withdraw returns a copy of the account with amount taken from the balance.
// The balance never goes below zero.
func (a Account) Withdraw(amount decimal.Decimal) (Account, error) {
	if !ValidAmount(amount) {
		return a, ErrInvalidAmount
	}
	if a.Balance.LessThan(amount) {
		return a, ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return a, nil
}

func fitsFloat(d decimal.Decimal) bool {
	f := d.InexactFloat64()
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
