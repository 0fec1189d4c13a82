package mockapi_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/mockapi"
	"github.com/pharmadash/pharmadash/pkg/config"
	"github.com/pharmadash/pharmadash/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.MockConfig{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
	}
	srv := mockapi.NewServer(cfg, logger.Nop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func login(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	form := url.Values{}
	form.Set("username", "admin@pharmacy.local")
	form.Set("password", "admin123")

	resp, err := http.PostForm(ts.URL+"/api/auth/login", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token api.Token
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&token))
	require.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
	return token.AccessToken
}

func doAuthed(t *testing.T, ts *httptest.Server, token, method, path string, body []byte) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_BadPassword(t *testing.T) {
	ts := newTestServer(t)

	form := url.Values{}
	form.Set("username", "admin@pharmacy.local")
	form.Set("password", "wrong")

	resp, err := http.PostForm(ts.URL+"/api/auth/login", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Incorrect email or password", body["detail"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/inventory/medicines")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	resp := doAuthed(t, ts, token, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := decode[api.User](t, resp)
	assert.Equal(t, "admin@pharmacy.local", user.Email)
	assert.Equal(t, "admin", user.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	payload, _ := json.Marshal(api.UserCreate{
		Email: "admin@pharmacy.local", FullName: "Dup", Password: "password123", Role: "staff",
	})
	resp, err := http.Post(ts.URL+"/api/auth/register", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMedicines_SearchFilter(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	resp := doAuthed(t, ts, token, http.MethodGet, "/api/inventory/medicines?search=paracetamol", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	medicines := decode[[]api.Medicine](t, resp)
	require.Len(t, medicines, 1)
	assert.Equal(t, "MED001", medicines[0].SKU)
}

func TestStockLevels_ExcludeExpired(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	resp := doAuthed(t, ts, token, http.MethodGet, "/api/inventory/stock-levels", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	levels := decode[[]api.StockLevel](t, resp)

	for _, level := range levels {
		if level.SKU == "MED003" {
			// Seeded with 15 sellable units plus a 40-unit expired batch.
			assert.Equal(t, 15, level.TotalQuantity)
			return
		}
	}
	t.Fatal("MED003 not in stock levels")
}

func TestAcknowledgeAlert_Idempotent(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	resp := doAuthed(t, ts, token, http.MethodPost, "/api/alerts/1/acknowledge", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[api.Alert](t, resp)
	assert.True(t, first.IsAcknowledged)

	resp = doAuthed(t, ts, token, http.MethodPost, "/api/alerts/1/acknowledge", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "second acknowledge is a no-op success")
	second := decode[api.Alert](t, resp)
	assert.True(t, second.IsAcknowledged)
}

func TestUpload_CSVMergesCatalog(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	csvBody := "sku,name,category,mrp,cost\nMED010,Ibuprofen 400mg,Analgesic,55,32\nMED001,Paracetamol 500mg,Analgesic,32,19\n"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "import.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/inventory/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[api.UploadResult](t, resp)

	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Equal(t, 1, result.WarningCount, "existing SKU update is a warning")

	listResp := doAuthed(t, ts, token, http.MethodGet, "/api/inventory/medicines?search=ibuprofen", nil)
	medicines := decode[[]api.Medicine](t, listResp)
	require.Len(t, medicines, 1)
	assert.Equal(t, "MED010", medicines[0].SKU)
}

func TestCategories_DistinctAndSorted(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	resp := doAuthed(t, ts, token, http.MethodGet, "/api/inventory/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	categories := decode[[]string](t, resp)
	assert.Equal(t, []string{"Analgesic", "Antibiotic", "Antidiabetic"}, categories)
}

func TestPriceComparison_MarksSingleLowestQuote(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	resp := doAuthed(t, ts, token, http.MethodGet, "/api/inventory/price-comparison?query=paracetamol", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quotes := decode[[]api.PriceQuote](t, resp)
	require.NotEmpty(t, quotes)

	lowest := 0
	lowestIdx := -1
	for i, q := range quotes {
		assert.Equal(t, 30.0, q.OriginalPrice, "quotes derive from the catalog MRP")
		assert.Less(t, q.Price, q.OriginalPrice)
		if q.IsLowest {
			lowest++
			lowestIdx = i
		}
	}
	require.Equal(t, 1, lowest, "exactly one quote carries the lowest-price flag")
	for _, q := range quotes {
		assert.GreaterOrEqual(t, q.Price, quotes[lowestIdx].Price)
	}
}

func TestPriceComparison_UnknownMedicineEmptyList(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	resp := doAuthed(t, ts, token, http.MethodGet, "/api/inventory/price-comparison?query=xylophone500", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quotes := decode[[]api.PriceQuote](t, resp)
	assert.Empty(t, quotes)
}

func TestAnalysisReport_CountsRisksFromBatches(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	resp := doAuthed(t, ts, token, http.MethodGet, "/api/inventory/analysis-report", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[api.AnalysisReport](t, resp)

	assert.Equal(t, 3, report.InventorySummary.TotalSKUs)
	assert.Equal(t, 4, report.InventorySummary.ActiveBatches, "the expired seed batch is not active")
	assert.NotZero(t, report.InventorySummary.TotalValue)

	assert.Equal(t, 1, report.Risks.ExpiredBatches)
	assert.Equal(t, 1, report.Risks.LowStockSKUs)

	assert.NotZero(t, report.SalesPerformance.TotalRevenue)
	require.NotEmpty(t, report.Forecasts)
	assert.NotZero(t, report.Forecasts[0].Forecast.ForecastedDemand)
}

func TestCreateOrder_InvalidNotificationMethod(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	payload, _ := json.Marshal(map[string]string{
		"customer_name":       "Asha",
		"contact_info":        "+91-9800000000",
		"notification_method": "carrier-pigeon",
	})
	resp := doAuthed(t, ts, token, http.MethodPost, "/api/orders/create", payload)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreatePurchaseOrder_PricesFromCatalog(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	payload, _ := json.Marshal(api.PurchaseOrderCreate{
		SupplierID: 1,
		Items:      []api.PurchaseOrderItem{{MedicineID: 1, Quantity: 100}},
	})
	resp := doAuthed(t, ts, token, http.MethodPost, "/api/suppliers/purchase-orders", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	po := decode[api.PurchaseOrder](t, resp)

	assert.Equal(t, "pending", po.Status)
	assert.InDelta(t, 1800.0, po.TotalCost, 0.01, "unit cost falls back to catalog cost")
}

func TestMarkExpired_RaisesAlert(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	resp := doAuthed(t, ts, token, http.MethodPost, "/api/waste/mark-expired/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[api.BatchStatusResult](t, resp)
	assert.True(t, strings.Contains(result.Message, "marked expired"))

	statsResp := doAuthed(t, ts, token, http.MethodGet, "/api/alerts/stats", nil)
	stats := decode[api.AlertStats](t, statsResp)
	assert.NotZero(t, stats.ByType["expired"])
}

func TestDashboardStats(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	resp := doAuthed(t, ts, token, http.MethodGet, "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[api.DashboardStats](t, resp)

	assert.Equal(t, 3, stats.TotalSKUs)
	assert.NotZero(t, stats.TotalStockValue)
	assert.NotZero(t, stats.WastageValue, "expired seed batch counts as wastage")
}

func TestChat_AnswersFromStoreState(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	payload, _ := json.Marshal(api.ChatRequest{Message: "which medicines are low on stock?"})
	resp := doAuthed(t, ts, token, http.MethodPost, "/api/chatbot/chat", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	chat := decode[api.ChatResponse](t, resp)

	assert.NotEmpty(t, chat.SessionID)
	assert.Contains(t, chat.Response, "Metformin")
}
