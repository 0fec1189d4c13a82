package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// WasteService talks to the /waste analytics endpoints.
type WasteService struct {
	c *Client
}

// WasteBreakdown is the per-cause split of waste value and quantity.
type WasteBreakdown struct {
	Value    float64 `json:"value"`
	Quantity int     `json:"quantity"`
}

// WasteAnalytics summarizes waste over a window.
type WasteAnalytics struct {
	TotalValue    float64                   `json:"total_value"`
	TotalQuantity int                       `json:"total_quantity"`
	Breakdown     map[string]WasteBreakdown `json:"breakdown"`
	StartDate     string                    `json:"start_date"`
	EndDate       string                    `json:"end_date"`
}

// WasteItem is one row of the top-waste ranking.
type WasteItem struct {
	MedicineID int     `json:"medicine_id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	Category   string  `json:"category,omitempty"`
	Quantity   int     `json:"quantity"`
	Value      float64 `json:"value"`
}

// WasteCategory is waste aggregated per medicine category.
type WasteCategory struct {
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Value    float64 `json:"value"`
}

// BatchStatusResult reports a batch flagged as expired or damaged.
type BatchStatusResult struct {
	Message string `json:"message"`
}

// Analytics returns waste totals for the window, defaulting server-side to
// the last 90 days.
func (s *WasteService) Analytics(ctx context.Context, start, end time.Time, category string) (*WasteAnalytics, error) {
	q := url.Values{}
	if !start.IsZero() {
		q.Set("start_date", start.Format(time.RFC3339))
	}
	if !end.IsZero() {
		q.Set("end_date", end.Format(time.RFC3339))
	}
	if category != "" {
		q.Set("category", category)
	}

	var analytics WasteAnalytics
	if err := s.c.get(ctx, "/waste/analytics", q, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}

// TopWasteItems ranks medicines by wasted value.
func (s *WasteService) TopWasteItems(ctx context.Context, limit int) ([]WasteItem, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var items []WasteItem
	if err := s.c.get(ctx, "/waste/top-waste-items", q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ByCategory returns waste grouped by medicine category.
func (s *WasteService) ByCategory(ctx context.Context) ([]WasteCategory, error) {
	var categories []WasteCategory
	if err := s.c.get(ctx, "/waste/by-category", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// MarkExpired flags a batch as expired, moving its stock to waste.
func (s *WasteService) MarkExpired(ctx context.Context, batchID int) (*BatchStatusResult, error) {
	var result BatchStatusResult
	if err := s.c.postJSON(ctx, fmt.Sprintf("/waste/mark-expired/%d", batchID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkDamaged flags a batch as damaged, moving its stock to waste.
func (s *WasteService) MarkDamaged(ctx context.Context, batchID int) (*BatchStatusResult, error) {
	var result BatchStatusResult
	if err := s.c.postJSON(ctx, fmt.Sprintf("/waste/mark-damaged/%d", batchID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
