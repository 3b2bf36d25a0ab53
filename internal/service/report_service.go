package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hireloop/billing/internal/config"
	"github.com/hireloop/billing/internal/model"
)

type ReportStore interface {
	BestProfession(ctx context.Context, from, to time.Time) (*model.ProfessionEarnings, error)
	BestClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientPayment, error)
}

type ExcelGenerator interface {
	Generate(report model.BestClientsReport) ([]byte, error)
}

type ReportService struct {
	reports      ReportStore
	excel        ExcelGenerator
	defaultLimit int
}

func NewReportService(reports ReportStore, excel ExcelGenerator, cfg *config.Config) *ReportService {
	return &ReportService{
		reports:      reports,
		excel:        excel,
		defaultLimit: cfg.Billing.BestClientsLimit,
	}
}

// BestProfession returns the profession with the highest summed paid-job
// price over the inclusive [start, end] date range.
func (s *ReportService) BestProfession(ctx context.Context, start, end time.Time) (*model.ProfessionEarnings, error) {
	from, to, err := normalizeRange(start, end)
	if err != nil {
		return nil, err
	}

	row, err := s.reports.BestProfession(ctx, from, to)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row, nil
}

// BestClients returns at most limit clients ordered by descending summed
// payment over the inclusive [start, end] date range.
func (s *ReportService) BestClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientPayment, error) {
	from, to, err := normalizeRange(start, end)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	rows, err := s.reports.BestClients(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows, nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// ExportBestClients renders the best-clients report as an XLSX workbook.
func (s *ReportService) ExportBestClients(ctx context.Context, start, end time.Time, limit int) (*ExportResult, error) {
	rows, err := s.BestClients(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}

	report := model.BestClientsReport{
		PeriodStart: dateOnly(start),
		PeriodEnd:   dateOnly(end),
		Clients:     rows,
	}
	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("best-clients-%s-%s.xlsx",
		report.PeriodStart.Format("20060102"),
		report.PeriodEnd.Format("20060102"),
	)
	return &ExportResult{FileName: fileName, Content: content}, nil
}

// normalizeRange truncates both bounds to whole days and converts the
// inclusive end date to an exclusive upper bound.
func normalizeRange(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	from := dateOnly(start)
	to := dateOnly(end)
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start must be before or equal to end", ErrInvalidInput)
	}
	return from, to.Add(24 * time.Hour), nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
