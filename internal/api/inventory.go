package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// InventoryService talks to the /inventory endpoints.
type InventoryService struct {
	c *Client
}

// Medicine is a product in the catalog.
type Medicine struct {
	ID                  int     `json:"id"`
	SKU                 string  `json:"sku"`
	Name                string  `json:"name"`
	Category            string  `json:"category,omitempty"`
	Manufacturer        string  `json:"manufacturer,omitempty"`
	Brand               string  `json:"brand,omitempty"`
	MRP                 float64 `json:"mrp,omitempty"`
	Cost                float64 `json:"cost,omitempty"`
	Schedule            string  `json:"schedule,omitempty"`
	StorageRequirements string  `json:"storage_requirements,omitempty"`
	IsActive            bool    `json:"is_active"`
}

// Batch is a dated lot of a medicine. Expiry and damage flags are computed
// server-side and treated as read-only facts here.
type Batch struct {
	ID          int       `json:"id"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  time.Time `json:"expiry_date"`
	IsExpired   bool      `json:"is_expired"`
	IsDamaged   bool      `json:"is_damaged"`
}

// StockLevel aggregates sellable quantity per medicine.
type StockLevel struct {
	MedicineID    int    `json:"medicine_id"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	TotalQuantity int    `json:"total_quantity"`
	NearestExpiry string `json:"nearest_expiry,omitempty"`
}

// UploadResult describes the outcome of a bulk import. Never persisted.
type UploadResult struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	WarningCount int      `json:"warning_count"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings"`
}

// MedicineFilter narrows the medicine list.
type MedicineFilter struct {
	Category string
	Search   string
}

// PriceQuote is one competitor's listing for a searched medicine.
type PriceQuote struct {
	Competitor      string  `json:"competitor"`
	Form            string  `json:"form"`
	Quantity        string  `json:"quantity"`
	OriginalPrice   float64 `json:"original_price"`
	Price           float64 `json:"price"`
	DiscountPercent float64 `json:"discount_percent"`
	IsLowest        bool    `json:"is_lowest"`
}

// AnalysisReport is the cross-section report behind the analysis view.
type AnalysisReport struct {
	GeneratedAt      time.Time          `json:"generated_at"`
	InventorySummary InventorySummary   `json:"inventory_summary"`
	SalesPerformance SalesPerformance   `json:"sales_performance"`
	Risks            RiskSummary        `json:"risks"`
	Forecasts        []MedicineForecast `json:"forecasts"`
}

type InventorySummary struct {
	TotalSKUs     int     `json:"total_skus"`
	ActiveBatches int     `json:"active_batches"`
	TotalValue    float64 `json:"total_value"`
}

type SalesPerformance struct {
	TotalTransactions int           `json:"total_transactions"`
	TotalRevenue      float64       `json:"total_revenue"`
	TopSelling        []SellingItem `json:"top_selling"`
}

type SellingItem struct {
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Revenue float64 `json:"revenue"`
}

type RiskSummary struct {
	ExpiredBatches int `json:"expired_batches"`
	ExpiringSoon   int `json:"expiring_soon"`
	LowStockSKUs   int `json:"low_stock_skus"`
}

// MedicineForecast pairs a medicine name with its demand forecast inside a
// report.
type MedicineForecast struct {
	Name     string   `json:"name"`
	Forecast Forecast `json:"forecast"`
}

// TransactionCreate records a stock movement.
type TransactionCreate struct {
	MedicineID      int    `json:"medicine_id" validate:"required"`
	BatchID         int    `json:"batch_id,omitempty"`
	TransactionType string `json:"transaction_type" validate:"required,oneof=purchase sale expired damaged recalled return"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	Notes           string `json:"notes,omitempty"`
}

// Transaction is a recorded stock movement.
type Transaction struct {
	ID              int       `json:"id"`
	MedicineID      int       `json:"medicine_id"`
	BatchID         int       `json:"batch_id,omitempty"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
}

// Medicines lists the catalog, optionally filtered by category or a search term.
func (s *InventoryService) Medicines(ctx context.Context, filter MedicineFilter) ([]Medicine, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}

	var medicines []Medicine
	if err := s.c.get(ctx, "/inventory/medicines", q, &medicines); err != nil {
		return nil, err
	}
	return medicines, nil
}

// Medicine fetches a single medicine by ID.
func (s *InventoryService) Medicine(ctx context.Context, id int) (*Medicine, error) {
	var medicine Medicine
	if err := s.c.get(ctx, fmt.Sprintf("/inventory/medicines/%d", id), nil, &medicine); err != nil {
		return nil, err
	}
	return &medicine, nil
}

// Batches lists the batches of a medicine.
func (s *InventoryService) Batches(ctx context.Context, medicineID int) ([]Batch, error) {
	var batches []Batch
	if err := s.c.get(ctx, fmt.Sprintf("/inventory/medicines/%d/batches", medicineID), nil, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// StockLevels returns aggregated stock per medicine.
func (s *InventoryService) StockLevels(ctx context.Context, lowStockOnly bool) ([]StockLevel, error) {
	q := url.Values{}
	if lowStockOnly {
		q.Set("low_stock_only", strconv.FormatBool(lowStockOnly))
	}

	var levels []StockLevel
	if err := s.c.get(ctx, "/inventory/stock-levels", q, &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

// Categories lists the distinct catalog categories, sorted.
func (s *InventoryService) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.c.get(ctx, "/inventory/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ComparePrices returns competitor listings for a medicine search term. An
// unknown medicine yields an empty list, not an error.
func (s *InventoryService) ComparePrices(ctx context.Context, search string) ([]PriceQuote, error) {
	q := url.Values{}
	q.Set("query", search)

	var quotes []PriceQuote
	if err := s.c.get(ctx, "/inventory/price-comparison", q, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// AnalysisReport fetches the full inventory analysis report.
func (s *InventoryService) AnalysisReport(ctx context.Context) (*AnalysisReport, error) {
	var report AnalysisReport
	if err := s.c.get(ctx, "/inventory/analysis-report", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// UploadFile bulk-imports inventory from a spreadsheet, CSV or JSON file.
// The file is validated client-side (extension allow-list, size ceiling,
// spreadsheet preflight) before any network call; see OpenUploadFile.
// The request uses the extended upload timeout.
func (s *InventoryService) UploadFile(ctx context.Context, path string, progress ProgressFunc) (*UploadResult, error) {
	file, err := OpenUploadFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var result UploadResult
	if err := s.c.postMultipart(ctx, "/inventory/upload", "file", file.Name, file, file.Size, &result, progress); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateTransaction records a stock movement.
func (s *InventoryService) CreateTransaction(ctx context.Context, req TransactionCreate) (*Transaction, error) {
	if err := s.c.validateStruct(req); err != nil {
		return nil, err
	}
	var tx Transaction
	if err := s.c.postJSON(ctx, "/inventory/transactions", req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
