package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/display"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCustomers struct {
	customers []models.Customer
}

func (f *fakeCustomers) SelectAll(context.Context) ([]models.Customer, error) {
	return f.customers, nil
}

func (f *fakeCustomers) SelectById(_ context.Context, id int64) (*models.Customer, error) {
	for _, c := range f.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}

func (f *fakeCustomers) Add(_ context.Context, input *models.NewCustomer) (*models.Customer, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	c := input.ToCustomer(int64(len(f.customers) + 1))
	f.customers = append(f.customers, c)
	return &c, nil
}

func (f *fakeCustomers) Update(ctx context.Context, id int64, input *models.NewCustomer) (*models.Customer, error) {
	if _, err := f.SelectById(ctx, id); err != nil {
		return nil, err
	}
	c := input.ToCustomer(id)
	return &c, nil
}

func (f *fakeCustomers) Delete(ctx context.Context, id int64) (*models.Customer, error) {
	return f.SelectById(ctx, id)
}

func (f *fakeCustomers) AddBalance(ctx context.Context, id int64, amount int64) (*models.Customer, error) {
	c, err := f.SelectById(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Balance, err = c.AddBalance(amount); err != nil {
		return nil, err
	}
	return c, nil
}

func (f *fakeCustomers) WithdrawBalance(ctx context.Context, id int64, amount int64) (*models.Customer, error) {
	c, err := f.SelectById(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Balance, err = c.WithdrawBalance(amount); err != nil {
		return nil, err
	}
	return c, nil
}

func (f *fakeCustomers) Search(context.Context, string) ([]models.Customer, error) {
	return f.customers, nil
}

func (f *fakeCustomers) SelectAllIdsWithBalance(context.Context) ([]models.CustomerBalanceInfo, error) {
	var out []models.CustomerBalanceInfo
	for _, c := range f.customers {
		if c.Balance > 0 {
			out = append(out, models.CustomerBalanceInfo{ID: c.ID, Balance: c.Balance})
		}
	}
	return out, nil
}

func (f *fakeCustomers) SelectAllIdsWithDebt(context.Context) ([]models.CustomerDebtInfo, error) {
	return nil, nil
}

func (f *fakeCustomers) TotalBalance(context.Context) (int64, error) {
	var total int64
	for _, c := range f.customers {
		total += c.Balance
	}
	return total, nil
}

func (f *fakeCustomers) TotalDebtById(context.Context, int64) (decimal.Decimal, error) {
	return decimal.NewFromInt(-300), nil
}

type fakeQueues struct {
	queues     []models.Queue
	start, end time.Time
	// customers, when set, checks balance-paid queues the way the repository does
	customers *fakeCustomers
}

func (f *fakeQueues) SelectAll(context.Context) ([]models.Queue, error) {
	return f.queues, nil
}

func (f *fakeQueues) SelectAllInRange(_ context.Context, start time.Time, end time.Time) ([]models.Queue, error) {
	f.start, f.end = start, end
	return f.queues, nil
}

func (f *fakeQueues) SelectById(_ context.Context, id int64) (*models.Queue, error) {
	for _, q := range f.queues {
		if q.ID == id {
			return &q, nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}

func (f *fakeQueues) Add(ctx context.Context, input *models.NewQueue) (*models.Queue, error) {
	q := input.ToQueue(1, time.Now())
	if f.customers != nil && q.CustomerId != nil {
		c, err := f.customers.SelectById(ctx, *q.CustomerId)
		if err != nil {
			return nil, err
		}
		if err := c.CheckBalanceFor(nil, q); err != nil {
			return nil, err
		}
	}
	return &q, nil
}

func (f *fakeQueues) Update(_ context.Context, id int64, input *models.NewQueue) (*models.Queue, error) {
	q := input.ToQueue(id, time.Now())
	return &q, nil
}

func (f *fakeQueues) Delete(ctx context.Context, id int64) (*models.Queue, error) {
	return f.SelectById(ctx, id)
}

func (f *fakeQueues) Search(context.Context, string) ([]models.Queue, error) {
	return f.queues, nil
}

type fakeSettings struct {
	lang config.Language
}

func (f *fakeSettings) LanguageUsed() config.Language { return f.lang }

func (f *fakeSettings) SaveLanguageUsed(lang config.Language) error {
	f.lang = lang
	return nil
}

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func newTestRouter(customers *fakeCustomers, queues *fakeQueues, settings *fakeSettings) *gin.Engine {
	h := &Handler{
		Customers: customers,
		Queues:    queues,
		Settings:  settings,
		Location:  time.UTC,
		now:       func() time.Time { return testNow },
	}
	r := gin.New()
	h.Register(r)
	return r
}

func do(r *gin.Engine, method string, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleCustomers() *fakeCustomers {
	return &fakeCustomers{customers: []models.Customer{
		{ID: 1, Name: "Amy", Balance: 500, Debt: decimal.Zero},
		{ID: 2, Name: "Ben", Balance: 5000, Debt: decimal.Zero},
		{ID: 3, Name: "Cak", Balance: 2000, Debt: decimal.Zero},
	}}
}

func TestCustomerRoutes(t *testing.T) {
	r := newTestRouter(sampleCustomers(), &fakeQueues{}, &fakeSettings{lang: config.LanguageEnglishUS})

	w := do(r, http.MethodGet, "/customers/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var customer models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customer))
	assert.Equal(t, "Ben", customer.Name)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/customers/9", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/customers/abc", nil).Code)

	w = do(r, http.MethodPost, "/customers", map[string]any{"name": "", "balance": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Name")

	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/customers", map[string]any{"name": "Dewi"}).Code)

	w = do(r, http.MethodGet, "/customers/2/debt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"debt":"-300"`)

	w = do(r, http.MethodGet, "/customers/totals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_balance":7500`)
}

func TestBalanceRoutes(t *testing.T) {
	r := newTestRouter(sampleCustomers(), &fakeQueues{}, &fakeSettings{})

	w := do(r, http.MethodPost, "/customers/1/balance/add", balanceRequest{Amount: 250})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":750`)

	assert.Equal(t, http.StatusUnprocessableEntity,
		do(r, http.MethodPost, "/customers/1/balance/withdraw", balanceRequest{Amount: 501}).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(r, http.MethodPost, "/customers/1/balance/add", balanceRequest{Amount: 0}).Code)
}

func TestDisplayCustomers(t *testing.T) {
	r := newTestRouter(sampleCustomers(), &fakeQueues{}, &fakeSettings{lang: config.LanguageIndonesia})

	w := do(r, http.MethodPost, "/customers/display", map[string]any{
		"balance_input": map[string]string{"min": "Rp 1.000", "max": ""},
		"sort_method":   map[string]any{"sort_by": "BALANCE", "is_ascending": false},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, int64(3), list[1].ID)
}

func TestDisplayCustomers_DefaultsSortByName(t *testing.T) {
	customers := &fakeCustomers{customers: []models.Customer{
		{ID: 1, Name: "cak"}, {ID: 2, Name: "Amy"}, {ID: 3, Name: "ben"},
	}}
	r := newTestRouter(customers, &fakeQueues{}, &fakeSettings{})

	w := do(r, http.MethodPost, "/customers/display", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Amy", "ben", "cak"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

type viewSource[M models.Model] struct {
	*models.ChangeRegistry[M]
	list []M
}

func newViewSource[M models.Model](list ...M) viewSource[M] {
	return viewSource[M]{ChangeRegistry: models.NewChangeRegistry[M](), list: list}
}

func (s viewSource[M]) SelectAll(context.Context) ([]M, error) {
	return s.list, nil
}

func TestDisplayQueues_FromViews(t *testing.T) {
	amy := models.Customer{ID: 1, Name: "Amy", Balance: 100}
	customers := newViewSource(amy)
	queues := newViewSource(
		models.Queue{ID: 1, CustomerId: &amy.ID, Customer: &amy, Status: models.QueueStatusInQueue, Date: testNow},
		models.Queue{ID: 2, Status: models.QueueStatusInQueue, Date: testNow},
	)
	views := display.NewViews(customers, newViewSource[models.Product](), queues, testNow)
	defer views.Close()
	require.NoError(t, views.Load(context.Background()))

	h := &Handler{Views: views, Settings: &fakeSettings{}, Location: time.UTC, now: func() time.Time { return testNow }}
	r := gin.New()
	h.Register(r)
	body := map[string]any{"customer_balance_input": map[string]string{"min": "500"}}

	w := do(r, http.MethodPost, "/queues/display", body)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Queue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].ID)

	customers.NotifyUpdated([]models.Customer{{ID: 1, Name: "Amy", Balance: 900}})
	w = do(r, http.MethodPost, "/queues/display", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(900), list[0].Customer.Balance)
}

func TestPreviewQueue(t *testing.T) {
	customers := &fakeCustomers{customers: []models.Customer{{ID: 1, Name: "Amy", Balance: 10_000, Debt: decimal.Zero}}}
	r := newTestRouter(customers, &fakeQueues{}, &fakeSettings{})

	w := do(r, http.MethodPost, "/queues/preview", map[string]any{
		"queue": map[string]any{
			"customer_id":    1,
			"status":         "COMPLETED",
			"payment_method": "ACCOUNT_BALANCE",
			"product_orders": []map[string]any{
				{"product_name": "Apel", "product_price": 1000, "quantity": "2"},
			},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp previewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(8000), resp.Preview.Balance)
	assert.True(t, resp.Preview.IsBalanceSufficient)
	assert.True(t, decimal.NewFromInt(2000).Equal(resp.Preview.GrandTotalPrice))
	assert.True(t, resp.Preview.Debt.IsZero())
}

func TestPreviewQueue_UnknownCustomer(t *testing.T) {
	r := newTestRouter(&fakeCustomers{}, &fakeQueues{}, &fakeSettings{})
	w := do(r, http.MethodPost, "/queues/preview", map[string]any{
		"queue": map[string]any{"customer_id": 4, "status": "UNPAID", "payment_method": "CASH"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddQueue_InsufficientBalance(t *testing.T) {
	customers := sampleCustomers()
	r := newTestRouter(customers, &fakeQueues{customers: customers}, &fakeSettings{})
	queue := func(customerId int64) map[string]any {
		return map[string]any{
			"customer_id":    customerId,
			"status":         "COMPLETED",
			"payment_method": "ACCOUNT_BALANCE",
			"product_orders": []map[string]any{
				{"product_name": "Apel", "product_price": 1000, "quantity": "1"},
			},
		}
	}

	w := do(r, http.MethodPost, "/queues", queue(1))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrInsufficientBalance.Error())

	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/queues", queue(2)).Code)
}

func TestListQueuesInRange(t *testing.T) {
	queues := &fakeQueues{}
	r := newTestRouter(&fakeCustomers{}, queues, &fakeSettings{})

	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/queues?start=2024-05-01&end=2024-05-31", nil).Code)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), queues.start)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), queues.end)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/queues?start=2024-05-01", nil).Code)
}

func TestDashboardRoute(t *testing.T) {
	queues := &fakeQueues{queues: []models.Queue{{
		ID:            1,
		Status:        models.QueueStatusCompleted,
		PaymentMethod: models.PaymentMethodCash,
		Date:          testNow,
		ProductOrders: []models.ProductOrder{{ProductName: "Apel", Quantity: decimal.NewFromInt(1), TotalPrice: decimal.NewFromInt(1000)}},
	}}}
	r := newTestRouter(sampleCustomers(), queues, &fakeSettings{})

	w := do(r, http.MethodGet, "/dashboard?range=TODAY", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_queues":1`)
	assert.Contains(t, w.Body.String(), `"customers_with_balance":3`)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), queues.start)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/dashboard?range=LAST_DECADE", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/dashboard?range=CUSTOM", nil).Code)
}

func TestExportQueuesRoute(t *testing.T) {
	r := newTestRouter(&fakeCustomers{}, &fakeQueues{}, &fakeSettings{})

	w := do(r, http.MethodPost, "/queues/export", map[string]any{"range": "THIS_MONTH"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, utils.ContentTypeXlsx, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestLanguageRoutes(t *testing.T) {
	settings := &fakeSettings{lang: config.LanguageEnglishUS}
	r := newTestRouter(&fakeCustomers{}, &fakeQueues{}, settings)

	w := do(r, http.MethodGet, "/settings/language", nil)
	assert.JSONEq(t, `{"language":"en-US"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/settings/language", languageRequest{Language: "fr-FR"}).Code)
	assert.Equal(t, config.LanguageEnglishUS, settings.lang)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, "/settings/language", languageRequest{Language: config.LanguageIndonesia}).Code)
	assert.Equal(t, config.LanguageIndonesia, settings.lang)
}
