package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hireloop/billing/internal/auth"
	"github.com/hireloop/billing/internal/config"
	"github.com/hireloop/billing/internal/http/middleware"
	"github.com/hireloop/billing/internal/model"
	"github.com/hireloop/billing/internal/repository"
	"github.com/hireloop/billing/internal/service"
)

const testSecret = "test-secret"

type stubContracts struct {
	contract  *model.Contract
	contracts []model.Contract
	err       error
}

func (s *stubContracts) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.contract, nil
}

func (s *stubContracts) ListContracts(ctx context.Context, profileID uuid.UUID) ([]model.Contract, error) {
	return s.contracts, s.err
}

type stubJobs struct {
	jobs    []model.Job
	receipt *model.PaymentReceipt
	payErr  error
	recErr  error
}

func (s *stubJobs) ListUnpaidJobs(ctx context.Context, profileID uuid.UUID) ([]model.Job, error) {
	return s.jobs, nil
}

func (s *stubJobs) PayJob(ctx context.Context, jobID, payerID uuid.UUID, paidAt time.Time) (*model.PaymentReceipt, error) {
	if s.payErr != nil {
		return nil, s.payErr
	}
	return s.receipt, nil
}

func (s *stubJobs) GetPaymentReceipt(ctx context.Context, jobID uuid.UUID) (*model.PaymentReceipt, error) {
	if s.recErr != nil {
		return nil, s.recErr
	}
	return s.receipt, nil
}

type stubProfiles struct {
	known      map[uuid.UUID]*model.Profile
	depositErr error
}

func (s *stubProfiles) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	if profile, ok := s.known[id]; ok {
		return profile, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfiles) Deposit(ctx context.Context, clientID uuid.UUID, amount, ratio decimal.Decimal) (*model.Profile, error) {
	if s.depositErr != nil {
		return nil, s.depositErr
	}
	if profile, ok := s.known[clientID]; ok {
		return profile, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubReports struct {
	profession *model.ProfessionEarnings
	clients    []model.ClientPayment
	err        error
}

func (s *stubReports) BestProfession(ctx context.Context, from, to time.Time) (*model.ProfessionEarnings, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profession, nil
}

func (s *stubReports) BestClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientPayment, error) {
	return s.clients, s.err
}

type stubReceiptGen struct{}

func (stubReceiptGen) Generate(receipt model.PaymentReceipt) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

type stubExcelGen struct{}

func (stubExcelGen) Generate(report model.BestClientsReport) ([]byte, error) {
	return []byte("workbook"), nil
}

type routerFixture struct {
	contracts *stubContracts
	jobs      *stubJobs
	profiles  *stubProfiles
	reports   *stubReports
}

func newTestRouter(t *testing.T, fx *routerFixture) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if fx.contracts == nil {
		fx.contracts = &stubContracts{}
	}
	if fx.jobs == nil {
		fx.jobs = &stubJobs{}
	}
	if fx.profiles == nil {
		fx.profiles = &stubProfiles{known: map[uuid.UUID]*model.Profile{}}
	}
	if fx.reports == nil {
		fx.reports = &stubReports{}
	}

	cfg := &config.Config{
		Billing: config.BillingConfig{DepositLimitRatio: 0.25, BestClientsLimit: 2},
	}
	billing := service.NewBillingService(fx.contracts, fx.jobs, fx.profiles, stubReceiptGen{}, cfg)
	reports := service.NewReportService(fx.reports, stubExcelGen{}, cfg)

	handler := NewHandler(billing, reports, zerolog.Nop())
	profileAuth := middleware.Profile(fx.profiles)
	adminAuth := middleware.AdminAuth(auth.NewParser(testSecret))
	return NewRouter(handler, profileAuth, adminAuth, "test")
}

func clientProfile() *model.Profile {
	return &model.Profile{
		ID:        uuid.New(),
		Type:      model.ProfileTypeClient,
		FirstName: "Harry",
		LastName:  "Potter",
		Balance:   decimal.NewFromInt(100),
	}
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ops",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(router *gin.Engine, method, target, profileID, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if profileID != "" {
		req.Header.Set("profile_id", profileID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestGetContract_RequiresResolvableProfile(t *testing.T) {
	router := newTestRouter(t, &routerFixture{})

	resp := doRequest(router, http.MethodGet, "/contracts/"+uuid.NewString(), "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doRequest(router, http.MethodGet, "/contracts/"+uuid.NewString(), uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetContract_Statuses(t *testing.T) {
	caller := clientProfile()
	contract := &model.Contract{
		ID:           uuid.New(),
		ClientID:     caller.ID,
		ContractorID: uuid.New(),
		Status:       model.ContractStatusInProgress,
	}
	outsider := clientProfile()

	fx := &routerFixture{
		contracts: &stubContracts{contract: contract},
		profiles: &stubProfiles{known: map[uuid.UUID]*model.Profile{
			caller.ID:   caller,
			outsider.ID: outsider,
		}},
	}
	router := newTestRouter(t, fx)

	resp := doRequest(router, http.MethodGet, "/contracts/"+contract.ID.String(), caller.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), contract.ID.String())

	resp = doRequest(router, http.MethodGet, "/contracts/"+contract.ID.String(), outsider.ID.String(), "", nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	fx.contracts.err = gorm.ErrRecordNotFound
	resp = doRequest(router, http.MethodGet, "/contracts/"+uuid.NewString(), caller.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListUnpaidJobs_ReturnsJSONArray(t *testing.T) {
	caller := clientProfile()
	job := model.Job{ID: uuid.New(), ContractID: uuid.New(), Price: decimal.NewFromInt(50)}
	router := newTestRouter(t, &routerFixture{
		jobs:     &stubJobs{jobs: []model.Job{job}},
		profiles: &stubProfiles{known: map[uuid.UUID]*model.Profile{caller.ID: caller}},
	})

	resp := doRequest(router, http.MethodGet, "/jobs/unpaid", caller.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), job.ID.String())
}

func TestPayJob_Success(t *testing.T) {
	caller := clientProfile()
	router := newTestRouter(t, &routerFixture{
		jobs:     &stubJobs{receipt: &model.PaymentReceipt{}},
		profiles: &stubProfiles{known: map[uuid.UUID]*model.Profile{caller.ID: caller}},
	})

	resp := doRequest(router, http.MethodPost, "/jobs/"+uuid.NewString()+"/pay", caller.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Payment successful")
}

func TestPayJob_InsufficientBalanceIsPlainText(t *testing.T) {
	caller := clientProfile()
	router := newTestRouter(t, &routerFixture{
		jobs:     &stubJobs{payErr: repository.ErrInsufficientFunds},
		profiles: &stubProfiles{known: map[uuid.UUID]*model.Profile{caller.ID: caller}},
	})

	resp := doRequest(router, http.MethodPost, "/jobs/"+uuid.NewString()+"/pay", caller.ID.String(), "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Insufficient balance", resp.Body.String())
}

func TestPayJob_ForbiddenAndNotFound(t *testing.T) {
	caller := clientProfile()
	profiles := &stubProfiles{known: map[uuid.UUID]*model.Profile{caller.ID: caller}}

	router := newTestRouter(t, &routerFixture{
		jobs:     &stubJobs{payErr: repository.ErrNotContractClient},
		profiles: profiles,
	})
	resp := doRequest(router, http.MethodPost, "/jobs/"+uuid.NewString()+"/pay", caller.ID.String(), "", nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	router = newTestRouter(t, &routerFixture{
		jobs:     &stubJobs{payErr: repository.ErrJobAlreadyPaid},
		profiles: profiles,
	})
	resp = doRequest(router, http.MethodPost, "/jobs/"+uuid.NewString()+"/pay", caller.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeposit_Success(t *testing.T) {
	caller := clientProfile()
	router := newTestRouter(t, &routerFixture{
		profiles: &stubProfiles{known: map[uuid.UUID]*model.Profile{caller.ID: caller}},
	})

	resp := doRequest(router, http.MethodPost, "/balances/deposit/"+caller.ID.String(), caller.ID.String(), `{"amount": 25}`, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Deposit successful")
}

func TestDeposit_OverLimitIsPlainTextWithCeiling(t *testing.T) {
	caller := clientProfile()
	router := newTestRouter(t, &routerFixture{
		profiles: &stubProfiles{
			known:      map[uuid.UUID]*model.Profile{caller.ID: caller},
			depositErr: &repository.DepositLimitError{MaxDeposit: decimal.NewFromInt(100)},
		},
	})

	resp := doRequest(router, http.MethodPost, "/balances/deposit/"+caller.ID.String(), caller.ID.String(), `{"amount": 101}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Cannot deposit more than 100", resp.Body.String())
}

func TestDeposit_UnknownClientNotFound(t *testing.T) {
	caller := clientProfile()
	router := newTestRouter(t, &routerFixture{
		profiles: &stubProfiles{
			known:      map[uuid.UUID]*model.Profile{caller.ID: caller},
			depositErr: gorm.ErrRecordNotFound,
		},
	})

	resp := doRequest(router, http.MethodPost, "/balances/deposit/"+uuid.NewString(), caller.ID.String(), `{"amount": 10}`, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdminRoutes_RequireAdminToken(t *testing.T) {
	router := newTestRouter(t, &routerFixture{})

	resp := doRequest(router, http.MethodGet, "/admin/best-profession?start=2024-03-01&end=2024-03-31", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	headers := map[string]string{"Authorization": "Bearer " + signToken(t, "viewer")}
	resp = doRequest(router, http.MethodGet, "/admin/best-profession?start=2024-03-01&end=2024-03-31", "", "", headers)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestBestProfession_MissingDatesIsPlainText(t *testing.T) {
	router := newTestRouter(t, &routerFixture{})
	headers := map[string]string{"Authorization": "Bearer " + signToken(t, auth.RoleAdmin)}

	resp := doRequest(router, http.MethodGet, "/admin/best-profession", "", "", headers)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Start and end dates are required.", resp.Body.String())
}

func TestBestProfession_EmptyRange404(t *testing.T) {
	router := newTestRouter(t, &routerFixture{
		reports: &stubReports{err: gorm.ErrRecordNotFound},
	})
	headers := map[string]string{"Authorization": "Bearer " + signToken(t, auth.RoleAdmin)}

	resp := doRequest(router, http.MethodGet, "/admin/best-profession?start=2024-03-01&end=2024-03-31", "", "", headers)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "No profession found in the given date range.", resp.Body.String())
}

func TestBestProfession_ReturnsTopRow(t *testing.T) {
	router := newTestRouter(t, &routerFixture{
		reports: &stubReports{profession: &model.ProfessionEarnings{
			Profession:  "plumber",
			TotalEarned: decimal.NewFromInt(500),
		}},
	})
	headers := map[string]string{"Authorization": "Bearer " + signToken(t, auth.RoleAdmin)}

	resp := doRequest(router, http.MethodGet, "/admin/best-profession?start=2024-03-01&end=2024-03-31", "", "", headers)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "plumber")
}

func TestBestClients_ReturnsRowsAndEmpty404(t *testing.T) {
	rows := []model.ClientPayment{
		{ID: uuid.New(), FullName: "Ada Lovelace", Paid: decimal.NewFromInt(300)},
	}
	router := newTestRouter(t, &routerFixture{reports: &stubReports{clients: rows}})
	headers := map[string]string{"Authorization": "Bearer " + signToken(t, auth.RoleAdmin)}

	resp := doRequest(router, http.MethodGet, "/admin/best-clients?start=2024-03-01&end=2024-03-31&limit=1", "", "", headers)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Ada Lovelace")

	router = newTestRouter(t, &routerFixture{reports: &stubReports{}})
	resp = doRequest(router, http.MethodGet, "/admin/best-clients?start=2024-03-01&end=2024-03-31", "", "", headers)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "No clients found in the given date range.", resp.Body.String())
}

func TestExportBestClients_ReturnsAttachment(t *testing.T) {
	rows := []model.ClientPayment{
		{ID: uuid.New(), FullName: "Ada Lovelace", Paid: decimal.NewFromInt(300)},
	}
	router := newTestRouter(t, &routerFixture{reports: &stubReports{clients: rows}})
	headers := map[string]string{"Authorization": "Bearer " + signToken(t, auth.RoleAdmin)}

	resp := doRequest(router, http.MethodGet, "/admin/best-clients/export?start=2024-03-01&end=2024-03-31", "", "", headers)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "best-clients-20240301-20240331.xlsx")
	assert.Equal(t, "workbook", resp.Body.String())
}

func TestJobReceipt_ReturnsPDF(t *testing.T) {
	caller := clientProfile()
	paidAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	receipt := &model.PaymentReceipt{
		Job: model.Job{ID: uuid.New(), Paid: true, PaymentDate: &paidAt, Price: decimal.NewFromInt(50)},
		Contract: model.Contract{
			ClientID:     caller.ID,
			ContractorID: uuid.New(),
		},
	}
	router := newTestRouter(t, &routerFixture{
		jobs:     &stubJobs{receipt: receipt},
		profiles: &stubProfiles{known: map[uuid.UUID]*model.Profile{caller.ID: caller}},
	})

	resp := doRequest(router, http.MethodGet, "/jobs/"+receipt.Job.ID.String()+"/receipt", caller.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Body.String(), "%PDF"))
}

func TestParseDate_AcceptedLayouts(t *testing.T) {
	for _, raw := range []string{"2024-03-01", "2024-03-01T10:00:00", "2024-03-01T10:00:00Z"} {
		if _, err := parseDate(raw); err != nil {
			t.Errorf("parseDate(%q) returned unexpected error: %v", raw, err)
		}
	}
	for _, raw := range []string{"", "March 1", "01/03/2024"} {
		if _, err := parseDate(raw); err == nil {
			t.Errorf("parseDate(%q) expected error, got nil", raw)
		}
	}
}
