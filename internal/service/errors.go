package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientFunds = errors.New("insufficient balance")
)

// DepositLimitExceededError reports a deposit above the computed ceiling
// and carries the ceiling so the caller can retry with a valid amount.
type DepositLimitExceededError struct {
	MaxDeposit decimal.Decimal
}

func (e *DepositLimitExceededError) Error() string {
	return fmt.Sprintf("cannot deposit more than %s", e.MaxDeposit.String())
}
