package repository

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrJobAlreadyPaid signals a payment attempt against a job whose
	// paid flag was already set when the row lock was taken.
	ErrJobAlreadyPaid = errors.New("repository: job already paid")
	// ErrNotContractClient signals the payer is not the client party of
	// the job's contract.
	ErrNotContractClient = errors.New("repository: payer is not the contract client")
	// ErrInsufficientFunds signals the client balance cannot cover the
	// job price.
	ErrInsufficientFunds = errors.New("repository: insufficient funds")
)

// DepositLimitError carries the ceiling computed inside the deposit
// transaction so the caller can report a retryable amount.
type DepositLimitError struct {
	MaxDeposit decimal.Decimal
}

func (e *DepositLimitError) Error() string {
	return fmt.Sprintf("repository: deposit exceeds limit of %s", e.MaxDeposit.String())
}
