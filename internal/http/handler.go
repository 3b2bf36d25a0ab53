package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hireloop/billing/internal/http/middleware"
	"github.com/hireloop/billing/internal/model"
	"github.com/hireloop/billing/internal/service"
)

type Handler struct {
	billing *service.BillingService
	reports *service.ReportService
	log     zerolog.Logger
}

func NewHandler(billing *service.BillingService, reports *service.ReportService, log zerolog.Logger) *Handler {
	return &Handler{billing: billing, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, profileAuth, adminAuth gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(profileAuth)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/jobs/unpaid", h.listUnpaidJobs)
	protected.POST("/jobs/:job_id/pay", h.payJob)
	protected.GET("/jobs/:job_id/receipt", h.jobReceipt)
	protected.POST("/balances/deposit/:userId", h.depositBalance)

	admin := router.Group("/admin")
	admin.Use(adminAuth)
	admin.GET("/best-profession", h.bestProfession)
	admin.GET("/best-clients", h.bestClients)
	admin.GET("/best-clients/export", h.exportBestClients)
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middlewarePrincipal(c)
	if !ok {
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}

	contract, err := h.billing.GetContract(c.Request.Context(), principal, contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middlewarePrincipal(c)
	if !ok {
		return
	}

	contracts, err := h.billing.ListContracts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	principal, ok := middlewarePrincipal(c)
	if !ok {
		return
	}

	jobs, err := h.billing.ListUnpaidJobs(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) payJob(c *gin.Context) {
	principal, ok := middlewarePrincipal(c)
	if !ok {
		return
	}

	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	if _, err := h.billing.PayJob(c.Request.Context(), principal, jobID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment successful"})
}

func (h *Handler) jobReceipt(c *gin.Context) {
	principal, ok := middlewarePrincipal(c)
	if !ok {
		return
	}

	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	result, err := h.billing.ReceiptPDF(c.Request.Context(), principal, jobID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func (h *Handler) depositBalance(c *gin.Context) {
	if _, ok := middlewarePrincipal(c); !ok {
		return
	}

	clientID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.billing.Deposit(c.Request.Context(), clientID, req.Amount); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deposit successful"})
}

func (h *Handler) bestProfession(c *gin.Context) {
	start, end, ok := parseRange(c)
	if !ok {
		return
	}

	row, err := h.reports.BestProfession(c.Request.Context(), start, end)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.String(http.StatusNotFound, "No profession found in the given date range.")
			return
		}
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handler) bestClients(c *gin.Context) {
	start, end, ok := parseRange(c)
	if !ok {
		return
	}
	limit := parseLimit(c.Query("limit"))

	rows, err := h.reports.BestClients(c.Request.Context(), start, end, limit)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.String(http.StatusNotFound, "No clients found in the given date range.")
			return
		}
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) exportBestClients(c *gin.Context) {
	start, end, ok := parseRange(c)
	if !ok {
		return
	}
	limit := parseLimit(c.Query("limit"))

	result, err := h.reports.ExportBestClients(c.Request.Context(), start, end, limit)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.String(http.StatusNotFound, "No clients found in the given date range.")
			return
		}
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var limitErr *service.DepositLimitExceededError
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.String(http.StatusBadRequest, "Insufficient balance")
	case errors.As(err, &limitErr):
		c.String(http.StatusBadRequest, "Cannot deposit more than "+limitErr.MaxDeposit.String())
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func middlewarePrincipal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

// parseRange reads the start/end query params shared by the admin
// reports. Missing or unparseable values abort with a plain-text
// validation message.
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, errStart := parseDate(c.Query("start"))
	end, errEnd := parseDate(c.Query("end"))
	if errStart != nil || errEnd != nil {
		c.String(http.StatusBadRequest, "Start and end dates are required.")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
