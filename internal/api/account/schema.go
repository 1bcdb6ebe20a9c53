package account

import (
	"github.com/shopspring/decimal"
)

type DepositSchema struct {
	AccountId *int64           `json:"account_id" validate:"required,gt=0"`
	Amount    *decimal.Decimal `json:"amount"`
}

type WithdrawSchema struct {
	AccountId *int64           `json:"account_id" validate:"required,gt=0"`
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
}

type BalanceResponseSchema struct {
	AccountId int64   `json:"account_id"`
	Balance   float64 `json:"balance"`
}

type AccountShowSchema struct {
	Id      int64   `json:"id"`
	Name    *string `json:"name"`
	Balance float64 `json:"balance"`
}

func newBalanceResponse(acc Account) BalanceResponseSchema {
	return BalanceResponseSchema{
		AccountId: acc.Id,
		Balance:   acc.Balance.InexactFloat64(),
	}
}

func newAccountShow(acc Account) AccountShowSchema {
	return AccountShowSchema{
		Id:      acc.Id,
		Name:    acc.Name,
		Balance: acc.Balance.InexactFloat64(),
	}
}
