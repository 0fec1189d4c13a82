package mockapi

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/pharmadash/pharmadash/internal/api"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	medicines := s.store.Medicines("", "")
	levels := s.store.StockLevels(false)
	alertStats := s.store.AlertStats()

	stats := api.DashboardStats{
		TotalSKUs:   len(medicines),
		TotalAlerts: alertStats.Unacknowledged,
	}

	costs := make(map[int]float64, len(medicines))
	for _, m := range medicines {
		costs[m.ID] = m.Cost
	}

	const lowStockThreshold = 50
	soon := time.Now().AddDate(0, 1, 0)
	for _, level := range levels {
		stats.TotalStockValue += costs[level.MedicineID] * float64(level.TotalQuantity)
		if level.TotalQuantity < lowStockThreshold {
			stats.LowStockCount++
		}
		for _, b := range s.store.Batches(level.MedicineID) {
			switch {
			case b.IsExpired || b.IsDamaged:
				stats.WastageValue += costs[level.MedicineID] * float64(b.Quantity)
			case b.ExpiryDate.Before(soon):
				stats.ExpiringSoonCount++
			}
		}
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExpiryTimeline(w http.ResponseWriter, r *http.Request) {
	type window struct {
		label string
		until time.Time
	}
	now := time.Now()
	windows := []window{
		{"0-30 days", now.AddDate(0, 1, 0)},
		{"31-90 days", now.AddDate(0, 3, 0)},
		{"91-180 days", now.AddDate(0, 6, 0)},
		{"180+ days", time.Time{}},
	}

	buckets := make([]api.ExpiryBucket, len(windows))
	for i, win := range windows {
		buckets[i].Period = win.label
	}

	for _, m := range s.store.Medicines("", "") {
		for _, b := range s.store.Batches(m.ID) {
			if b.IsExpired || b.IsDamaged {
				continue
			}
			idx := len(windows) - 1
			for i, win := range windows[:len(windows)-1] {
				if b.ExpiryDate.Before(win.until) {
					idx = i
					break
				}
			}
			buckets[idx].Quantity += b.Quantity
			buckets[idx].Value += m.Cost * float64(b.Quantity)
		}
	}

	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleInventoryByCategory(w http.ResponseWriter, r *http.Request) {
	byCategory := make(map[string]*api.CategorySlice)
	for _, m := range s.store.Medicines("", "") {
		category := m.Category
		if category == "" {
			category = "Uncategorized"
		}
		slice, ok := byCategory[category]
		if !ok {
			slice = &api.CategorySlice{Category: category}
			byCategory[category] = slice
		}
		for _, b := range s.store.Batches(m.ID) {
			if b.IsExpired || b.IsDamaged {
				continue
			}
			slice.Quantity += b.Quantity
			slice.Value += m.Cost * float64(b.Quantity)
		}
	}

	slices := make([]api.CategorySlice, 0, len(byCategory))
	for _, slice := range byCategory {
		slices = append(slices, *slice)
	}
	sort.Slice(slices, func(i, j int) bool { return slices[i].Value > slices[j].Value })

	writeJSON(w, http.StatusOK, slices)
}

// handleSalesTrends synthesizes a plausible daily series; the mock keeps no
// sales ledger.
func (s *Server) handleSalesTrends(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}

	writeJSON(w, http.StatusOK, salesTrendPoints(days))
}

func salesTrendPoints(days int) []api.SalesTrendPoint {
	points := make([]api.SalesTrendPoint, days)
	for i := range points {
		date := time.Now().AddDate(0, 0, i-days+1)
		// Weekday-shaped volume, steady enough to chart.
		qty := 40 + 5*int(date.Weekday())
		points[i] = api.SalesTrendPoint{
			Date:     date.Format("2006-01-02"),
			Quantity: qty,
			Revenue:  float64(qty) * 35.0,
		}
	}
	return points
}

func (s *Server) handleTopMedicines(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 10
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	byValue := q.Get("by") == "value"

	top := []api.TopMedicine{}
	for _, level := range s.store.StockLevels(false) {
		m, _ := s.store.Medicine(level.MedicineID)
		top = append(top, api.TopMedicine{
			MedicineID: level.MedicineID,
			Name:       level.Name,
			SKU:        level.SKU,
			Quantity:   level.TotalQuantity,
			Value:      m.Cost * float64(level.TotalQuantity),
		})
	}
	sort.Slice(top, func(i, j int) bool {
		if byValue {
			return top[i].Value > top[j].Value
		}
		return top[i].Quantity > top[j].Quantity
	})
	if len(top) > limit {
		top = top[:limit]
	}

	writeJSON(w, http.StatusOK, top)
}
