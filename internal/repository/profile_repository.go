package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hireloop/billing/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, type, first_name, last_name, profession, balance
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&profile).Error; err != nil {
		return nil, err
	}
	if profile.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

// Deposit credits the client balance inside one transaction. The client
// row is locked first so concurrent deposits serialize and each one sees
// an outstanding total consistent with the ceiling it is checked against.
func (r *ProfileRepository) Deposit(
	ctx context.Context,
	clientID uuid.UUID,
	amount decimal.Decimal,
	limitRatio decimal.Decimal,
) (*model.Profile, error) {
	var updated model.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client model.Profile
		if err := tx.Raw(`
			SELECT id, type, first_name, last_name, profession, balance
			FROM profiles
			WHERE id = ? AND type = 'client'
			FOR UPDATE
		`, clientID).Scan(&client).Error; err != nil {
			return err
		}
		if client.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}

		var outstanding struct {
			Total decimal.Decimal
		}
		if err := tx.Raw(`
			SELECT COALESCE(SUM(j.price), 0) AS total
			FROM jobs j
			JOIN contracts c ON c.id = j.contract_id
			WHERE NOT j.paid
				AND c.status = 'in_progress'
				AND c.client_id = ?
		`, clientID).Scan(&outstanding).Error; err != nil {
			return err
		}

		ceiling := outstanding.Total.Mul(limitRatio)
		if amount.GreaterThan(ceiling) {
			return &DepositLimitError{MaxDeposit: ceiling}
		}

		return tx.Raw(`
			UPDATE profiles
			SET balance = balance + ?
			WHERE id = ?
			RETURNING id, type, first_name, last_name, profession, balance
		`, amount, clientID).Scan(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
