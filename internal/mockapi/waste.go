package mockapi

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pharmadash/pharmadash/internal/api"
)

// wasteRows collects every expired or damaged batch with its medicine.
func (s *Server) wasteRows() []wasteRow {
	var rows []wasteRow
	for _, m := range s.store.Medicines("", "") {
		for _, b := range s.store.Batches(m.ID) {
			if !b.IsExpired && !b.IsDamaged {
				continue
			}
			cause := "expired"
			if b.IsDamaged {
				cause = "damaged"
			}
			rows = append(rows, wasteRow{
				medicine: m,
				batch:    b,
				cause:    cause,
				value:    m.Cost * float64(b.Quantity),
			})
		}
	}
	return rows
}

type wasteRow struct {
	medicine api.Medicine
	batch    api.Batch
	cause    string
	value    float64
}

func (s *Server) handleWasteAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")

	end := time.Now()
	start := end.AddDate(0, 0, -90)
	if v := q.Get("start_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			start = t
		}
	}
	if v := q.Get("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			end = t
		}
	}

	analytics := api.WasteAnalytics{
		Breakdown: make(map[string]api.WasteBreakdown),
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
	}
	for _, row := range s.wasteRows() {
		if category != "" && row.medicine.Category != category {
			continue
		}
		analytics.TotalValue += row.value
		analytics.TotalQuantity += row.batch.Quantity

		b := analytics.Breakdown[row.cause]
		b.Value += row.value
		b.Quantity += row.batch.Quantity
		analytics.Breakdown[row.cause] = b
	}

	writeJSON(w, http.StatusOK, analytics)
}

func (s *Server) handleTopWasteItems(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	byMedicine := make(map[int]*api.WasteItem)
	for _, row := range s.wasteRows() {
		item, ok := byMedicine[row.medicine.ID]
		if !ok {
			item = &api.WasteItem{
				MedicineID: row.medicine.ID,
				Name:       row.medicine.Name,
				SKU:        row.medicine.SKU,
				Category:   row.medicine.Category,
			}
			byMedicine[row.medicine.ID] = item
		}
		item.Quantity += row.batch.Quantity
		item.Value += row.value
	}

	items := make([]api.WasteItem, 0, len(byMedicine))
	for _, item := range byMedicine {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Value > items[j].Value })
	if len(items) > limit {
		items = items[:limit]
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleWasteByCategory(w http.ResponseWriter, r *http.Request) {
	byCategory := make(map[string]*api.WasteCategory)
	for _, row := range s.wasteRows() {
		category := row.medicine.Category
		if category == "" {
			category = "Uncategorized"
		}
		c, ok := byCategory[category]
		if !ok {
			c = &api.WasteCategory{Category: category}
			byCategory[category] = c
		}
		c.Quantity += row.batch.Quantity
		c.Value += row.value
	}

	categories := make([]api.WasteCategory, 0, len(byCategory))
	for _, c := range byCategory {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Value > categories[j].Value })

	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleMarkExpired(w http.ResponseWriter, r *http.Request) {
	s.markBatch(w, r, "expired")
}

func (s *Server) handleMarkDamaged(w http.ResponseWriter, r *http.Request) {
	s.markBatch(w, r, "damaged")
}

func (s *Server) markBatch(w http.ResponseWriter, r *http.Request, status string) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid batch id")
		return
	}

	medicine, batch, ok := s.store.MarkBatch(id, status)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Batch not found")
		return
	}
	writeJSON(w, http.StatusOK, api.BatchStatusResult{
		Message: medicine.Name + " batch " + batch.BatchNumber + " marked " + status,
	})
}
