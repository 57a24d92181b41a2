package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"invoice_recorder/internal/handlers"
	"invoice_recorder/internal/ledger"
	"invoice_recorder/internal/models"
	"invoice_recorder/internal/repository"
	"invoice_recorder/internal/repository/database"
	importitems "invoice_recorder/internal/repository/imports"
	"invoice_recorder/internal/services/importer"
	"invoice_recorder/internal/services/invoices"
	"invoice_recorder/internal/services/reports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type tokens struct{}

func (tokens) FindByPlainToken(_ context.Context, plain string) (*repository.APIToken, error) {
	if plain == "secret" {
		return &repository.APIToken{ID: 1, OwnerID: "owner-1"}, nil
	}
	return nil, repository.ErrTokenNotFound
}

type fakeInvoices struct {
	rows map[string]*models.Invoice
}

func (f *fakeInvoices) Create(_ context.Context, owner string, fl models.InvoiceFields) (*models.Invoice, error) {
	inv := &models.Invoice{ID: uuid.NewString(), OwnerID: owner}
	fl.Apply(inv)
	if err := ledger.Prepare(inv); err != nil {
		return nil, err
	}
	f.rows[inv.ID] = inv
	return inv, nil
}

func (f *fakeInvoices) find(owner, id string) (*models.Invoice, error) {
	inv, ok := f.rows[id]
	if !ok || inv.OwnerID != owner {
		return nil, ledger.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvoices) Update(_ context.Context, owner, id string, fl models.InvoiceFields) (*models.Invoice, error) {
	inv, err := f.find(owner, id)
	if err != nil {
		return nil, err
	}
	fl.Apply(inv)
	return inv, ledger.Prepare(inv)
}

func (f *fakeInvoices) Delete(_ context.Context, owner, id string) error {
	if _, err := f.find(owner, id); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeInvoices) Get(_ context.Context, owner, id string) (*invoices.Detail, error) {
	inv, err := f.find(owner, id)
	if err != nil {
		return nil, err
	}
	return &invoices.Detail{Invoice: inv, Status: ledger.Status(inv)}, nil
}

func (f *fakeInvoices) List(_ context.Context, owner string, fl models.InvoiceFilter) (*invoices.ListResult, error) {
	res := &invoices.ListResult{Filter: fl}
	for _, inv := range f.rows {
		if inv.OwnerID == owner {
			res.Invoices = append(res.Invoices, *inv)
		}
	}
	return res, nil
}

func (f *fakeInvoices) SettlePayment1(_ context.Context, owner, id string, amount decimal.Decimal) (*models.Invoice, error) {
	inv, err := f.find(owner, id)
	if err != nil {
		return nil, err
	}
	if err := ledger.SettlePayment1(inv, amount); err != nil {
		return nil, err
	}
	return inv, ledger.Prepare(inv)
}

func (f *fakeInvoices) SettlePayment2(_ context.Context, owner, id string, amount decimal.Decimal) (*models.Invoice, error) {
	inv, err := f.find(owner, id)
	if err != nil {
		return nil, err
	}
	if err := ledger.SettlePayment2(inv, amount); err != nil {
		return nil, err
	}
	return inv, ledger.Prepare(inv)
}

type fakeImporter struct {
	got []importer.Request
}

func (f *fakeImporter) Import(_ context.Context, req importer.Request) (importer.Summary, error) {
	f.got = append(f.got, req)
	if strings.HasSuffix(req.FilePath, "broken.csv") {
		return importer.Summary{}, fmt.Errorf("%w: party", importer.ErrMissingColumns)
	}
	return importer.Summary{Format: "csv", Succeeded: 2, Errors: []importitems.RowError{}}, nil
}

type fakeRecords struct{}

func (fakeRecords) List(context.Context, string, int64, int64) ([]importitems.Record, int64, error) {
	return []importitems.Record{{OwnerID: "owner-1", Status: importitems.StatusDone}}, 1, nil
}

func (fakeRecords) Find(_ context.Context, _, id string) (importitems.Record, error) {
	if id != "rec-1" {
		return importitems.Record{}, mongo.ErrNoDocuments
	}
	return importitems.Record{OwnerID: "owner-1"}, nil
}

func (fakeRecords) Items(context.Context, string, bool) ([]importitems.Item, error) {
	return []importitems.Item{{Row: 1, Status: importitems.StatusDone}}, nil
}

type fakeReports struct{}

func (fakeReports) Generate(_ context.Context, owner, month string, f reports.Format) (*database.ReportArtifact, error) {
	if month == "2024-04" {
		return nil, reports.ErrNoInvoices
	}
	return &database.ReportArtifact{OwnerID: owner, Month: month, Format: string(f), SizeBytes: 3}, nil
}

func (fakeReports) Open(ctx context.Context, owner, month string, f reports.Format) (io.ReadCloser, *database.ReportArtifact, error) {
	a, err := fakeReports{}.Generate(ctx, owner, month, f)
	if err != nil {
		return nil, nil, err
	}
	return io.NopCloser(strings.NewReader("a,b")), a, nil
}

type fakeUploads struct {
	keys []string
}

func (f *fakeUploads) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (int64, error) {
	b, err := io.ReadAll(r)
	f.keys = append(f.keys, key)
	return int64(len(b)), err
}

type fakeHealth struct{ err error }

func (f fakeHealth) CheckConnections(context.Context) error { return f.err }

type fixture struct {
	router   http.Handler
	invoices *fakeInvoices
	importer *fakeImporter
	uploads  *fakeUploads
}

func newFixture(healthErr error) *fixture {
	fx := &fixture{
		invoices: &fakeInvoices{rows: map[string]*models.Invoice{}},
		importer: &fakeImporter{},
		uploads:  &fakeUploads{},
	}
	h := handlers.New(handlers.Handlers{
		Invoices: fx.invoices,
		Importer: fx.importer,
		Records:  fakeRecords{},
		Reports:  fakeReports{},
		Uploads:  fx.uploads,
		Health:   fakeHealth{err: healthErr},
		Bucket:   "invoices",
	})
	fx.router = NewRouter(h, tokens{})
	return fx
}

func (fx *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, req)
	return rr
}

func createBody() map[string]string {
	return map[string]string{
		"invoice_number": "INV-1",
		"party":          "Acme",
		"firm":           "Shree",
		"quality":        "Cotton",
		"invoice_date":   "2024-03-01",
		"due_date":       "2024-03-31",
		"payment_date_1": "2024-03-11",
		"total_amount":   "1,05,000",
		"balance":        "5,000",
		"payment_1":      "1,05,000",
		"dhara_day":      "0",
		"taka":           "12",
	}
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newFixture(nil).router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = httptest.NewRecorder()
	newFixture(errors.New("postgres ping failed")).router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "postgres ping failed")
}

func TestUnauthorized(t *testing.T) {
	rr := httptest.NewRecorder()
	newFixture(nil).router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/invoices", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestInvoiceLifecycle(t *testing.T) {
	fx := newFixture(nil)

	rr := fx.do(t, http.MethodPost, "/invoices", createBody())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		Invoice struct {
			ID            string `json:"id"`
			Payment2      string `json:"payment_2"`
			InvoiceDate   string `json:"invoice_date"`
			PaymentStatus string `json:"payment_status"`
		} `json:"invoice"`
		NextDefaults map[string]string `json:"next_defaults"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "493.15", created.Invoice.Payment2)
	assert.Equal(t, "2024-03-01", created.Invoice.InvoiceDate)
	assert.Equal(t, "pending", created.Invoice.PaymentStatus)
	assert.Equal(t, "Shree", created.NextDefaults["firm"])
	id := created.Invoice.ID

	rr = fx.do(t, http.MethodGet, "/invoices/"+id, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = fx.do(t, http.MethodPost, "/invoices/"+id+"/settle-payment-1", map[string]string{"amount": "6,000"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = fx.do(t, http.MethodPost, "/invoices/"+id+"/settle-payment-1", map[string]string{"amount": "5,000"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"payment_status":"payment_1_settled"`)

	rr = fx.do(t, http.MethodPost, "/invoices/"+id+"/settle-payment-2", map[string]string{"amount": "493.15"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"payment_status":"both_settled"`)
	assert.Contains(t, rr.Body.String(), `"payment_2":"0.00"`)

	rr = fx.do(t, http.MethodPost, "/invoices/"+id+"/settle-payment-2", map[string]string{"amount": "abc"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	update := createBody()
	update["party"] = "Acme Traders"
	rr = fx.do(t, http.MethodPut, "/invoices/"+id, update)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Acme Traders")

	rr = fx.do(t, http.MethodGet, "/invoices?month=2024-03", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), id)

	rr = fx.do(t, http.MethodDelete, "/invoices/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = fx.do(t, http.MethodGet, "/invoices/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateInvoice_Validation(t *testing.T) {
	fx := newFixture(nil)

	body := createBody()
	body["party"] = ""
	body["taka"] = "1.2.3"
	rr := fx.do(t, http.MethodPost, "/invoices", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"taka"`)

	body = createBody()
	body["party"] = ""
	rr = fx.do(t, http.MethodPost, "/invoices", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"party"`)

	body = createBody()
	delete(body, "dhara_day")
	delete(body, "total_amount")
	rr = fx.do(t, http.MethodPost, "/invoices", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"dhara_day"`)
	assert.Contains(t, rr.Body.String(), `"total_amount"`)
	assert.Empty(t, fx.invoices.rows)
}

func TestInvoice_BadID(t *testing.T) {
	rr := newFixture(nil).do(t, http.MethodGet, "/invoices/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListInvoices_BadMonth(t *testing.T) {
	rr := newFixture(nil).do(t, http.MethodGet, "/invoices?month=2024-13", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRemoteImport(t *testing.T) {
	fx := newFixture(nil)

	rr := fx.do(t, http.MethodPost, "/imports/remote", map[string]string{"file_path": "s3://invoices/in.csv"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success_count":2`)
	assert.Equal(t, "owner-1", fx.importer.got[0].OwnerID)

	rr = fx.do(t, http.MethodPost, "/imports/remote", map[string]string{"file_path": "s3://invoices/broken.csv"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = fx.do(t, http.MethodPost, "/imports/remote", map[string]string{"file_path": "/etc/passwd"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadImport(t *testing.T) {
	fx := newFixture(nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "march.csv")
	require.NoError(t, err)
	_, _ = io.WriteString(fw, "firm\n")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, fx.uploads.keys, 1)
	assert.True(t, strings.HasPrefix(fx.uploads.keys[0], "imports/owner-1/"))
	assert.Equal(t, "s3://invoices/"+fx.uploads.keys[0], fx.importer.got[0].FilePath)
	assert.Equal(t, "march.csv", fx.importer.got[0].FileName)
}

func TestImportRecords(t *testing.T) {
	fx := newFixture(nil)

	rr := fx.do(t, http.MethodGet, "/imports", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total":1`)

	rr = fx.do(t, http.MethodGet, "/imports/rec-1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = fx.do(t, http.MethodGet, "/imports/other", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReports(t *testing.T) {
	fx := newFixture(nil)

	rr := fx.do(t, http.MethodPost, "/reports/2024-03?format=xlsx", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "invoices_2024-03.xlsx")

	rr = fx.do(t, http.MethodGet, "/reports/2024-03", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "invoices_2024-03.csv")
	assert.Equal(t, "a,b", rr.Body.String())

	rr = fx.do(t, http.MethodPost, "/reports/2024-04", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = fx.do(t, http.MethodPost, "/reports/2024-03?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
