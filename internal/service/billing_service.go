package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hireloop/billing/internal/config"
	"github.com/hireloop/billing/internal/model"
	"github.com/hireloop/billing/internal/repository"
)

type ContractStore interface {
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	ListContracts(ctx context.Context, profileID uuid.UUID) ([]model.Contract, error)
}

type JobStore interface {
	ListUnpaidJobs(ctx context.Context, profileID uuid.UUID) ([]model.Job, error)
	PayJob(ctx context.Context, jobID, payerID uuid.UUID, paidAt time.Time) (*model.PaymentReceipt, error)
	GetPaymentReceipt(ctx context.Context, jobID uuid.UUID) (*model.PaymentReceipt, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	Deposit(ctx context.Context, clientID uuid.UUID, amount, limitRatio decimal.Decimal) (*model.Profile, error)
}

type ReceiptGenerator interface {
	Generate(receipt model.PaymentReceipt) ([]byte, error)
}

type BillingService struct {
	contracts  ContractStore
	jobs       JobStore
	profiles   ProfileStore
	receipts   ReceiptGenerator
	limitRatio decimal.Decimal
	now        func() time.Time
}

func NewBillingService(
	contracts ContractStore,
	jobs JobStore,
	profiles ProfileStore,
	receipts ReceiptGenerator,
	cfg *config.Config,
) *BillingService {
	return &BillingService{
		contracts:  contracts,
		jobs:       jobs,
		profiles:   profiles,
		receipts:   receipts,
		limitRatio: decimal.NewFromFloat(cfg.Billing.DepositLimitRatio),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *BillingService) GetContract(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	contract, err := s.contracts.GetContract(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !contract.Involves(principal.ID) {
		return nil, ErrPermissionDenied
	}
	return contract, nil
}

func (s *BillingService) ListContracts(ctx context.Context, principal model.Principal) ([]model.Contract, error) {
	return s.contracts.ListContracts(ctx, principal.ID)
}

func (s *BillingService) ListUnpaidJobs(ctx context.Context, principal model.Principal) ([]model.Job, error) {
	return s.jobs.ListUnpaidJobs(ctx, principal.ID)
}

// PayJob transfers the job price from the calling client to the
// contractor. Jobs already paid behave as not found, so a repeated call
// never moves funds twice.
func (s *BillingService) PayJob(ctx context.Context, principal model.Principal, jobID uuid.UUID) (*model.PaymentReceipt, error) {
	receipt, err := s.jobs.PayJob(ctx, jobID, principal.ID, s.now())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, repository.ErrJobAlreadyPaid):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrNotContractClient):
			return nil, ErrPermissionDenied
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}
	return receipt, nil
}

// Deposit credits a client balance, bounded by the configured ratio of
// the client's outstanding unpaid job total.
func (s *BillingService) Deposit(ctx context.Context, clientID uuid.UUID, amount decimal.Decimal) (*model.Profile, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	profile, err := s.profiles.Deposit(ctx, clientID, amount, s.limitRatio)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		var limitErr *repository.DepositLimitError
		if errors.As(err, &limitErr) {
			return nil, &DepositLimitExceededError{MaxDeposit: limitErr.MaxDeposit}
		}
		return nil, err
	}
	return profile, nil
}

type ReceiptResult struct {
	FileName string
	Content  []byte
}

// ReceiptPDF renders a payment receipt for a paid job. Either party to
// the contract may download it.
func (s *BillingService) ReceiptPDF(ctx context.Context, principal model.Principal, jobID uuid.UUID) (*ReceiptResult, error) {
	receipt, err := s.jobs.GetPaymentReceipt(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !receipt.Contract.Involves(principal.ID) {
		return nil, ErrPermissionDenied
	}

	content, err := s.receipts.Generate(*receipt)
	if err != nil {
		return nil, err
	}
	return &ReceiptResult{
		FileName: fmt.Sprintf("receipt-%s.pdf", receipt.Job.ID),
		Content:  content,
	}, nil
}
