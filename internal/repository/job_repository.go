package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireloop/billing/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// ListUnpaidJobs returns unpaid jobs under in_progress contracts the
// profile is a party to.
func (r *JobRepository) ListUnpaidJobs(ctx context.Context, profileID uuid.UUID) ([]model.Job, error) {
	var jobs []model.Job
	if err := r.db.WithContext(ctx).Raw(`
		SELECT j.id, j.contract_id, j.description, j.price, j.paid, j.payment_date, j.created_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE NOT j.paid
			AND c.status = 'in_progress'
			AND (c.client_id = ? OR c.contractor_id = ?)
		ORDER BY j.created_at ASC
	`, profileID, profileID).Scan(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// PayJob moves the job price from the client balance to the contractor
// balance and marks the job paid, all inside one transaction. The job
// row and both profile rows are locked, and the paid flag and balance
// are re-checked under the locks, so two concurrent payments of the
// same job cannot both commit.
func (r *JobRepository) PayJob(
	ctx context.Context,
	jobID uuid.UUID,
	payerID uuid.UUID,
	paidAt time.Time,
) (*model.PaymentReceipt, error) {
	var receipt model.PaymentReceipt
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job model.Job
		if err := tx.Raw(`
			SELECT id, contract_id, description, price, paid, payment_date, created_at
			FROM jobs
			WHERE id = ?
			FOR UPDATE
		`, jobID).Scan(&job).Error; err != nil {
			return err
		}
		if job.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}

		var contract model.Contract
		if err := tx.Raw(`
			SELECT id, client_id, contractor_id, terms, status, created_at
			FROM contracts
			WHERE id = ?
			LIMIT 1
		`, job.ContractID).Scan(&contract).Error; err != nil {
			return err
		}
		if contract.ClientID != payerID {
			return ErrNotContractClient
		}
		if job.Paid {
			return ErrJobAlreadyPaid
		}

		// Lock the two balances in a fixed order to avoid deadlocks
		// between concurrent payments touching the same profiles.
		var parties []model.Profile
		if err := tx.Raw(`
			SELECT id, type, first_name, last_name, profession, balance
			FROM profiles
			WHERE id IN (?, ?)
			ORDER BY id
			FOR UPDATE
		`, contract.ClientID, contract.ContractorID).Scan(&parties).Error; err != nil {
			return err
		}
		var client, contractor model.Profile
		for _, p := range parties {
			switch p.ID {
			case contract.ClientID:
				client = p
			case contract.ContractorID:
				contractor = p
			}
		}
		if client.ID == uuid.Nil || contractor.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}

		if client.Balance.LessThan(job.Price) {
			return ErrInsufficientFunds
		}

		if err := tx.Exec(`
			UPDATE profiles SET balance = balance - ? WHERE id = ?
		`, job.Price, client.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`
			UPDATE profiles SET balance = balance + ? WHERE id = ?
		`, job.Price, contractor.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`
			UPDATE jobs SET paid = TRUE, payment_date = ? WHERE id = ?
		`, paidAt, job.ID).Error; err != nil {
			return err
		}

		job.Paid = true
		job.PaymentDate = &paidAt
		client.Balance = client.Balance.Sub(job.Price)
		contractor.Balance = contractor.Balance.Add(job.Price)

		receipt = model.PaymentReceipt{
			Job:        job,
			Contract:   contract,
			Client:     client,
			Contractor: contractor,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// GetPaymentReceipt loads a paid job together with its contract and both
// parties. Unpaid jobs are reported as not found.
func (r *JobRepository) GetPaymentReceipt(ctx context.Context, jobID uuid.UUID) (*model.PaymentReceipt, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, description, price, paid, payment_date, created_at
		FROM jobs
		WHERE id = ? AND paid
		LIMIT 1
	`, jobID).Scan(&job).Error; err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	var contract model.Contract
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, client_id, contractor_id, terms, status, created_at
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, job.ContractID).Scan(&contract).Error; err != nil {
		return nil, err
	}

	var parties []model.Profile
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, type, first_name, last_name, profession, balance
		FROM profiles
		WHERE id IN (?, ?)
	`, contract.ClientID, contract.ContractorID).Scan(&parties).Error; err != nil {
		return nil, err
	}

	receipt := model.PaymentReceipt{Job: job, Contract: contract}
	for _, p := range parties {
		switch p.ID {
		case contract.ClientID:
			receipt.Client = p
		case contract.ContractorID:
			receipt.Contractor = p
		}
	}
	return &receipt, nil
}
