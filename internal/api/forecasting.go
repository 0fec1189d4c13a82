package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ForecastingService talks to the /forecasting endpoints. Forecasts are
// computed server-side per request and never persisted client-side beyond the
// snapshot cache.
type ForecastingService struct {
	c *Client
}

// Forecast is a per-medicine demand projection.
type Forecast struct {
	MedicineID          int     `json:"medicine_id"`
	MedicineName        string  `json:"medicine_name"`
	SKU                 string  `json:"sku"`
	ForecastedDemand    float64 `json:"forecasted_demand"`
	ReorderPoint        float64 `json:"reorder_point"`
	RecommendedQuantity float64 `json:"recommended_quantity"`
	ConfidenceScore     float64 `json:"confidence_score"`
	Reasoning           string  `json:"reasoning,omitempty"`
}

// ReorderSuggestion advises replenishment for a SKU.
type ReorderSuggestion struct {
	MedicineID          int     `json:"medicine_id"`
	MedicineName        string  `json:"medicine_name"`
	SKU                 string  `json:"sku"`
	Category            string  `json:"category,omitempty"`
	CurrentStock        int     `json:"current_stock"`
	TotalPhysicalStock  int     `json:"total_physical_stock"`
	ExpiredStock        int     `json:"expired_stock"`
	Priority            string  `json:"priority"`
	ForecastedDemand    float64 `json:"forecasted_demand"`
	ReorderPoint        float64 `json:"reorder_point"`
	RecommendedQuantity float64 `json:"recommended_quantity"`
}

// BatchForecastResult summarizes a bulk forecast run.
type BatchForecastResult struct {
	Processed int    `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// Forecast returns the demand forecast for one medicine over horizonDays.
func (s *ForecastingService) Forecast(ctx context.Context, medicineID, horizonDays int) (*Forecast, error) {
	q := url.Values{}
	if horizonDays > 0 {
		q.Set("horizon_days", strconv.Itoa(horizonDays))
	}

	var forecast Forecast
	if err := s.c.get(ctx, fmt.Sprintf("/forecasting/medicine/%d", medicineID), q, &forecast); err != nil {
		return nil, err
	}
	return &forecast, nil
}

// ReorderSuggestions lists replenishment advice, sorted critical-first by the server.
func (s *ForecastingService) ReorderSuggestions(ctx context.Context, category string, criticalOnly bool) ([]ReorderSuggestion, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if criticalOnly {
		q.Set("critical_only", "true")
	}

	var suggestions []ReorderSuggestion
	if err := s.c.get(ctx, "/forecasting/reorder-suggestions", q, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// GenerateBatchForecast triggers a forecast run over the whole catalog.
func (s *ForecastingService) GenerateBatchForecast(ctx context.Context) (*BatchForecastResult, error) {
	var result BatchForecastResult
	if err := s.c.postJSON(ctx, "/forecasting/batch-forecast", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
