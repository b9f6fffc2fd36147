package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thetechguyfromvietnam/tax-info/internal/lookup"
	"github.com/thetechguyfromvietnam/tax-info/internal/models"
	"github.com/thetechguyfromvietnam/tax-info/internal/store"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeSyncer records sync calls, the context state it saw, and returns a
// canned outcome.
type fakeSyncer struct {
	outcome models.SyncOutcome
	calls   int
	last    *models.TaxRecord
	ctxErr  error
}

func (f *fakeSyncer) Sync(ctx context.Context, record *models.TaxRecord) models.SyncOutcome {
	f.calls++
	f.last = record
	f.ctxErr = ctx.Err()
	return f.outcome
}

func newTestRouter(st store.Store, syncer *fakeSyncer) *gin.Engine {
	logger := zap.NewNop()
	resolver := lookup.NewResolver(logger, lookup.NewStaticSource())
	return NewRouter(NewHandler(st, resolver, syncer, logger), logger)
}

type apiResponse struct {
	Success          bool                `json:"success"`
	Message          string              `json:"message"`
	Data             json.RawMessage     `json:"data"`
	GoogleSheetsSync *models.SyncOutcome `json:"googleSheetsSync"`
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHealth(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore(), &fakeSyncer{})

	w, resp := doRequest(t, router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestFetch_EmptyStore(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore(), &fakeSyncer{})

	w, resp := doRequest(t, router, http.MethodGet, "/api/tax-info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "null", string(resp.Data))
}

func TestSubmit_SavesAndSyncs(t *testing.T) {
	st := store.NewMemoryStore()
	syncer := &fakeSyncer{outcome: models.SyncOutcome{Success: true, Message: "Row appended"}}
	router := newTestRouter(st, syncer)

	w, resp := doRequest(t, router, http.MethodPost, "/api/tax-info",
		`{"taxCode":"0316794479","email":"test@example.com","phone":"0123456789"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.GoogleSheetsSync)
	assert.True(t, resp.GoogleSheetsSync.Success)

	var record models.TaxRecord
	require.NoError(t, json.Unmarshal(resp.Data, &record))
	assert.Equal(t, "0123456789", record.Phone)

	assert.Equal(t, 1, syncer.calls)
	stored, err := st.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "0316794479", stored.TaxCode)
}

func TestSubmit_NormalizesPhone(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore(), &fakeSyncer{})

	_, resp := doRequest(t, router, http.MethodPost, "/api/tax-info",
		`{"taxCode":"0316794479","email":"test@example.com","phone":"+84 123-456-789"}`)

	require.True(t, resp.Success)
	var record models.TaxRecord
	require.NoError(t, json.Unmarshal(resp.Data, &record))
	assert.Equal(t, "0123456789", record.Phone)
}

func TestSubmit_FormatsAddress(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore(), &fakeSyncer{})

	_, resp := doRequest(t, router, http.MethodPost, "/api/tax-info",
		`{"taxCode":"0316794479","email":"test@example.com","phone":"0123456789","address":"12 Lê Lợi, Quận 1"}`)

	require.True(t, resp.Success)
	var record models.TaxRecord
	require.NoError(t, json.Unmarshal(resp.Data, &record))
	assert.Equal(t, "12 Lê Lợi, Quận 1, Việt Nam", record.Address)
}

func TestSubmit_KeepsCreatedAtAcrossResubmits(t *testing.T) {
	st := store.NewMemoryStore()
	router := newTestRouter(st, &fakeSyncer{})

	_, first := doRequest(t, router, http.MethodPost, "/api/tax-info",
		`{"taxCode":"0316794479","email":"test@example.com","phone":"0123456789"}`)
	require.True(t, first.Success)
	var firstRecord models.TaxRecord
	require.NoError(t, json.Unmarshal(first.Data, &firstRecord))

	_, second := doRequest(t, router, http.MethodPost, "/api/tax-info",
		`{"taxCode":"3901212654","email":"test@example.com","phone":"0123456789"}`)
	require.True(t, second.Success)
	var secondRecord models.TaxRecord
	require.NoError(t, json.Unmarshal(second.Data, &secondRecord))

	assert.True(t, firstRecord.CreatedAt.Equal(secondRecord.CreatedAt))
	stored, _ := st.Load()
	assert.Equal(t, "3901212654", stored.TaxCode)
}

func TestSubmit_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			"bad tax code",
			`{"taxCode":"abc","email":"test@example.com","phone":"0123456789"}`,
			"Invalid tax code format (must be 10-13 digits)",
		},
		{
			"missing tax code",
			`{"email":"test@example.com","phone":"0123456789"}`,
			"Tax code is required",
		},
		{
			"missing email",
			`{"taxCode":"0316794479","phone":"0123456789"}`,
			"Email is required",
		},
		{
			"bad email",
			`{"taxCode":"0316794479","email":"nope","phone":"0123456789"}`,
			"Invalid email format",
		},
		{
			"missing phone",
			`{"taxCode":"0316794479","email":"test@example.com"}`,
			"Phone number is required",
		},
		{
			"bad phone",
			`{"taxCode":"0316794479","email":"test@example.com","phone":"12345"}`,
			"Invalid phone number (must be 10-11 digits)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			syncer := &fakeSyncer{}
			router := newTestRouter(st, syncer)

			w, resp := doRequest(t, router, http.MethodPost, "/api/tax-info", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, 0, syncer.calls, "validation failure must not trigger a sync")

			stored, err := st.Load()
			require.NoError(t, err)
			assert.Nil(t, stored, "validation failure must not persist anything")
		})
	}
}

// recordingSource captures the context state at resolution time.
type recordingSource struct {
	ctxErr error
	result *models.CompanyLookupResult
}

func (s *recordingSource) Name() string { return "recording" }

func (s *recordingSource) Resolve(ctx context.Context, taxCode string) (*models.CompanyLookupResult, error) {
	s.ctxErr = ctx.Err()
	return s.result, nil
}

func TestSubmit_ClientDisconnectDoesNotCancelSync(t *testing.T) {
	syncer := &fakeSyncer{outcome: models.SyncOutcome{Success: true, Message: "Row appended"}}
	router := newTestRouter(store.NewMemoryStore(), syncer)

	// A client that has already gone away by the time the handler runs.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/tax-info",
		strings.NewReader(`{"taxCode":"0316794479","email":"test@example.com","phone":"0123456789"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, syncer.calls)
	assert.NoError(t, syncer.ctxErr, "sync must not inherit the client's cancellation")
}

func TestLookup_ClientDisconnectDoesNotCancelResolution(t *testing.T) {
	logger := zap.NewNop()
	src := &recordingSource{result: &models.CompanyLookupResult{
		Success:     true,
		TaxCode:     "0316794479",
		CompanyName: "Công Ty TNHH ABC",
	}}
	handler := NewHandler(store.NewMemoryStore(), lookup.NewResolver(logger, src), &fakeSyncer{}, logger)
	router := NewRouter(handler, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/tax-lookup/0316794479", nil).WithContext(ctx)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.NoError(t, src.ctxErr, "sources must not inherit the client's cancellation")
}

func TestSubmit_EmailRuleUsesSharedPattern(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore(), &fakeSyncer{})

	// An underscore in the domain slips past validator/v10's built-in
	// email rule; the shared pattern rejects it.
	w, resp := doRequest(t, router, http.MethodPost, "/api/tax-info",
		`{"taxCode":"0316794479","email":"ke.toan@cong_ty.vn","phone":"0123456789"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid email format", resp.Message)
}

func TestSubmit_StripsControlCharacters(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore(), &fakeSyncer{})

	_, resp := doRequest(t, router, http.MethodPost, "/api/tax-info",
		"{\"taxCode\":\"0316794479\",\"email\":\"test@example.com\",\"phone\":\"0123456789\",\"companyName\":\"Công Ty\x00 ABC\",\"invoiceNumber\":\"INV-\x01001\"}")

	require.True(t, resp.Success)
	var record models.TaxRecord
	require.NoError(t, json.Unmarshal(resp.Data, &record))
	assert.Equal(t, "Công Ty ABC", record.CompanyName)
	assert.Equal(t, "INV-001", record.InvoiceNumber)
}

func TestSubmit_SyncFailureDoesNotFailSubmit(t *testing.T) {
	syncer := &fakeSyncer{outcome: models.SyncOutcome{Success: false, Message: "webhook returned status 500"}}
	router := newTestRouter(store.NewMemoryStore(), syncer)

	w, resp := doRequest(t, router, http.MethodPost, "/api/tax-info",
		`{"taxCode":"0316794479","email":"test@example.com","phone":"0123456789"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.GoogleSheetsSync)
	assert.False(t, resp.GoogleSheetsSync.Success)
	assert.Equal(t, "webhook returned status 500", resp.GoogleSheetsSync.Message)
}

func TestLookup_InvalidFormatIsBusinessFailure(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore(), &fakeSyncer{})

	w, resp := doRequest(t, router, http.MethodGet, "/api/tax-lookup/abc", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid tax code format (must be 10-13 digits)", resp.Message)
}

func TestLookup_StaticHit(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore(), &fakeSyncer{})

	w, resp := doRequest(t, router, http.MethodGet, "/api/tax-lookup/3901212654", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	var result models.CompanyLookupResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "Công Ty TNHH Mtv Ngô Trọng Phát", result.CompanyName)
}

func TestLookup_MissIsBusinessFailure(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore(), &fakeSyncer{})

	w, resp := doRequest(t, router, http.MethodGet, "/api/tax-lookup/9999999999", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestParseLookup(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore(), &fakeSyncer{})

	w, resp := doRequest(t, router, http.MethodPost, "/api/tax-lookup/parse",
		`{"MaSoThue":"0316794479","Title":"Công Ty TNHH ABC","TitleEnAscii":"ABC Co Ltd","DiaChiCongTy":"5 Nguyễn Huệ, Quận 1, TP.HCM"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	var result models.CompanyLookupResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "Công Ty TNHH ABC", result.CompanyName)
	assert.Equal(t, "ABC Co Ltd", result.CompanyNameEn)
	assert.Equal(t, "5 Nguyễn Huệ, Quận 1, TP.HCM, Việt Nam", result.Address)
}

func TestParseLookup_MissingTaxCode(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore(), &fakeSyncer{})

	w, resp := doRequest(t, router, http.MethodPost, "/api/tax-lookup/parse",
		`{"Title":"Công Ty TNHH ABC"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Success)
}
