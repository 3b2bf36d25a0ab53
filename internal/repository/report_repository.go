package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hireloop/billing/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// BestProfession sums paid job prices per contractor profession over
// [from, to). Ties resolve alphabetically so the result is stable across
// runs.
func (r *ReportRepository) BestProfession(ctx context.Context, from, to time.Time) (*model.ProfessionEarnings, error) {
	var rows []model.ProfessionEarnings
	if err := r.db.WithContext(ctx).Raw(`
		SELECT p.profession, SUM(j.price) AS total_earned
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid
			AND j.payment_date >= ?
			AND j.payment_date < ?
		GROUP BY p.profession
		ORDER BY total_earned DESC, p.profession ASC
		LIMIT 1
	`, from, to).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// BestClients sums paid job prices per client over [from, to) and
// returns the top rows by descending total.
func (r *ReportRepository) BestClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientPayment, error) {
	var rows []model.ClientPayment
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id,
			p.first_name || ' ' || p.last_name AS full_name,
			SUM(j.price) AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid
			AND j.payment_date >= ?
			AND j.payment_date < ?
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY paid DESC, p.id ASC
		LIMIT ?
	`, from, to, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
