package mockapi

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/xuri/excelize/v2"
)

func (s *Server) handleMedicines(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.store.Medicines(q.Get("category"), q.Get("search")))
}

func (s *Server) handleMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid medicine id")
		return
	}
	medicine, ok := s.store.Medicine(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Medicine not found")
		return
	}
	writeJSON(w, http.StatusOK, medicine)
}

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid medicine id")
		return
	}
	if _, ok := s.store.Medicine(id); !ok {
		writeDetail(w, http.StatusNotFound, "Medicine not found")
		return
	}
	writeJSON(w, http.StatusOK, s.store.Batches(id))
}

func (s *Server) handleStockLevels(w http.ResponseWriter, r *http.Request) {
	lowStockOnly := r.URL.Query().Get("low_stock_only") == "true"
	writeJSON(w, http.StatusOK, s.store.StockLevels(lowStockOnly))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Categories())
}

// Competitor pharmacies quoted by the price comparison. Prices are derived
// from the catalog MRP; the mock has no live feeds.
var competitors = []struct {
	name   string
	factor float64
}{
	{"Apollo Pharmacy", 0.95},
	{"1mg", 0.88},
	{"PharmEasy", 0.90},
	{"Netmeds", 0.92},
}

func (s *Server) handlePriceComparison(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("query"))
	if term == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "query parameter is required")
		return
	}

	quotes := []api.PriceQuote{}
	matches := s.store.Medicines("", term)
	if len(matches) == 0 {
		writeJSON(w, http.StatusOK, quotes)
		return
	}

	m := matches[0]
	lowest := 0
	for i, c := range competitors {
		price := round2(m.MRP * c.factor)
		quotes = append(quotes, api.PriceQuote{
			Competitor:      c.name,
			Form:            "Strip of 10 tablets",
			Quantity:        "10 units",
			OriginalPrice:   m.MRP,
			Price:           price,
			DiscountPercent: round2((1 - c.factor) * 100),
		})
		if price < quotes[lowest].Price {
			lowest = i
		}
	}
	quotes[lowest].IsLowest = true

	writeJSON(w, http.StatusOK, quotes)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// handleAnalysisReport assembles the report the analysis view renders:
// inventory totals, sales performance, risk counts and forecasts for the
// highest-stock medicines.
func (s *Server) handleAnalysisReport(w http.ResponseWriter, r *http.Request) {
	medicines := s.store.Medicines("", "")
	levels := s.store.StockLevels(false)

	report := api.AnalysisReport{GeneratedAt: time.Now()}
	report.InventorySummary.TotalSKUs = len(medicines)

	soon := time.Now().AddDate(0, 3, 0)
	for _, m := range medicines {
		for _, b := range s.store.Batches(m.ID) {
			switch {
			case b.IsExpired:
				report.Risks.ExpiredBatches++
			case b.IsDamaged:
			default:
				if b.Quantity > 0 {
					report.InventorySummary.ActiveBatches++
				}
				report.InventorySummary.TotalValue += m.Cost * float64(b.Quantity)
				if b.ExpiryDate.Before(soon) {
					report.Risks.ExpiringSoon++
				}
			}
		}
	}
	report.Risks.LowStockSKUs = len(s.store.StockLevels(true))

	for _, p := range salesTrendPoints(30) {
		report.SalesPerformance.TotalTransactions += p.Quantity
		report.SalesPerformance.TotalRevenue += p.Revenue
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].TotalQuantity > levels[j].TotalQuantity })
	top := levels
	if len(top) > 3 {
		top = top[:3]
	}
	report.SalesPerformance.TopSelling = []api.SellingItem{}
	report.Forecasts = []api.MedicineForecast{}
	for _, level := range top {
		m, _ := s.store.Medicine(level.MedicineID)
		report.SalesPerformance.TopSelling = append(report.SalesPerformance.TopSelling, api.SellingItem{
			Name:    level.Name,
			Qty:     level.TotalQuantity,
			Revenue: m.MRP * float64(level.TotalQuantity),
		})
		report.Forecasts = append(report.Forecasts, api.MedicineForecast{
			Name:     level.Name,
			Forecast: s.forecastFor(m, 30),
		})
	}

	writeJSON(w, http.StatusOK, report)
}

// handleUpload accepts a spreadsheet, CSV or JSON file and merges its rows
// into the catalog, returning per-row success and error counts.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(api.MaxUploadSize); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file field is required")
		return
	}
	defer file.Close()

	rows, err := parseUploadRows(file, header.Filename)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.store.ImportMedicines(rows)
	s.logger.Info().
		Str("filename", header.Filename).
		Int("total_rows", result.TotalRows).
		Int("success", result.SuccessCount).
		Int("errors", result.ErrorCount).
		Msg("inventory upload processed")
	writeJSON(w, http.StatusOK, result)
}

func parseUploadRows(file io.Reader, filename string) ([]api.Medicine, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		var rows []api.Medicine
		if err := json.NewDecoder(file).Decode(&rows); err != nil {
			return nil, errInvalidUpload("invalid JSON file")
		}
		return rows, nil
	case ".csv":
		return parseCSVRows(file)
	case ".xlsx", ".xls":
		return parseWorkbookRows(file)
	default:
		return nil, errInvalidUpload("unsupported file type")
	}
}

func parseCSVRows(file io.Reader) ([]api.Medicine, error) {
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errInvalidUpload("invalid CSV file")
	}
	return rowsFromRecords(records), nil
}

func parseWorkbookRows(file io.Reader) ([]api.Medicine, error) {
	wb, err := excelize.OpenReader(file)
	if err != nil {
		return nil, errInvalidUpload("invalid spreadsheet file")
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errInvalidUpload("spreadsheet has no sheets")
	}
	records, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, errInvalidUpload("could not read spreadsheet rows")
	}
	return rowsFromRecords(records), nil
}

// rowsFromRecords maps header-named columns onto medicines. The first record
// is the header row.
func rowsFromRecords(records [][]string) []api.Medicine {
	if len(records) < 2 {
		return nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rows := make([]api.Medicine, 0, len(records)-1)
	for _, record := range records[1:] {
		m := api.Medicine{
			SKU:          cell(record, "sku"),
			Name:         cell(record, "name"),
			Category:     cell(record, "category"),
			Manufacturer: cell(record, "manufacturer"),
			Brand:        cell(record, "brand"),
			IsActive:     true,
		}
		m.MRP, _ = strconv.ParseFloat(cell(record, "mrp"), 64)
		m.Cost, _ = strconv.ParseFloat(cell(record, "cost"), 64)
		rows = append(rows, m)
	}
	return rows
}

type errInvalidUpload string

func (e errInvalidUpload) Error() string { return string(e) }

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req api.TransactionCreate
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, ok := s.store.Medicine(req.MedicineID); !ok {
		writeDetail(w, http.StatusNotFound, "Medicine not found")
		return
	}

	tx := api.Transaction{
		ID:              s.store.nextTransactionID(),
		MedicineID:      req.MedicineID,
		BatchID:         req.BatchID,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		CreatedAt:       time.Now(),
	}
	writeJSON(w, http.StatusCreated, tx)
}
