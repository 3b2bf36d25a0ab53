package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfessionEarnings is one row of the best-profession aggregate.
type ProfessionEarnings struct {
	Profession  string          `json:"profession"`
	TotalEarned decimal.Decimal `json:"total_earned"`
}

// ClientPayment is one row of the best-clients aggregate.
type ClientPayment struct {
	ID       uuid.UUID       `json:"id"`
	FullName string          `json:"full_name"`
	Paid     decimal.Decimal `json:"paid"`
}

// BestClientsReport feeds the XLSX export.
type BestClientsReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Clients     []ClientPayment
}
