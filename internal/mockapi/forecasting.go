package mockapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pharmadash/pharmadash/internal/api"
)

// Forecasts are deterministic functions of current stock so the numbers stay
// plausible across calls without a real demand model.

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
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

	horizonDays := 30
	if v := r.URL.Query().Get("horizon_days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			horizonDays = n
		}
	}

	writeJSON(w, http.StatusOK, s.forecastFor(medicine, horizonDays))
}

func (s *Server) forecastFor(m api.Medicine, horizonDays int) api.Forecast {
	var stock int
	for _, level := range s.store.StockLevels(false) {
		if level.MedicineID == m.ID {
			stock = level.TotalQuantity
			break
		}
	}

	// Assume roughly 2 units/day demand scaled by horizon.
	demand := 2.0 * float64(horizonDays)
	reorderPoint := demand * 0.5
	recommended := demand - float64(stock)
	if recommended < 0 {
		recommended = 0
	}

	return api.Forecast{
		MedicineID:          m.ID,
		MedicineName:        m.Name,
		SKU:                 m.SKU,
		ForecastedDemand:    demand,
		ReorderPoint:        reorderPoint,
		RecommendedQuantity: recommended,
		ConfidenceScore:     0.72,
		Reasoning:           "Projected from recent sales velocity and current sellable stock.",
	}
}

func (s *Server) handleReorderSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	criticalOnly := q.Get("critical_only") == "true"

	suggestions := []api.ReorderSuggestion{}
	for _, level := range s.store.StockLevels(false) {
		if category != "" && level.Category != category {
			continue
		}

		forecast := s.mustForecast(level.MedicineID)
		if float64(level.TotalQuantity) >= forecast.ReorderPoint {
			continue
		}

		priority := "medium"
		if float64(level.TotalQuantity) < forecast.ReorderPoint/2 {
			priority = "critical"
		}
		if criticalOnly && priority != "critical" {
			continue
		}

		var physical, expired int
		for _, b := range s.store.Batches(level.MedicineID) {
			physical += b.Quantity
			if b.IsExpired {
				expired += b.Quantity
			}
		}

		suggestions = append(suggestions, api.ReorderSuggestion{
			MedicineID:          level.MedicineID,
			MedicineName:        level.Name,
			SKU:                 level.SKU,
			Category:            level.Category,
			CurrentStock:        level.TotalQuantity,
			TotalPhysicalStock:  physical,
			ExpiredStock:        expired,
			Priority:            priority,
			ForecastedDemand:    forecast.ForecastedDemand,
			ReorderPoint:        forecast.ReorderPoint,
			RecommendedQuantity: forecast.RecommendedQuantity,
		})
	}

	// Critical suggestions lead the list.
	for i, sug := range suggestions {
		if sug.Priority == "critical" && i > 0 {
			suggestions[0], suggestions[i] = suggestions[i], suggestions[0]
		}
	}

	writeJSON(w, http.StatusOK, suggestions)
}

func (s *Server) mustForecast(medicineID int) api.Forecast {
	medicine, _ := s.store.Medicine(medicineID)
	return s.forecastFor(medicine, 30)
}

func (s *Server) handleBatchForecast(w http.ResponseWriter, r *http.Request) {
	processed := len(s.store.Medicines("", ""))
	writeJSON(w, http.StatusOK, api.BatchForecastResult{
		Processed: processed,
		Message:   "Forecast generated for all active medicines",
	})
}
