package api

import (
	"context"
	"net/url"
	"strconv"
)

// DashboardService talks to the read-only /dashboard aggregates.
type DashboardService struct {
	c *Client
}

// DashboardStats is the headline figures panel.
type DashboardStats struct {
	TotalStockValue   float64 `json:"total_stock_value"`
	TotalSKUs         int     `json:"total_skus"`
	LowStockCount     int     `json:"low_stock_count"`
	ExpiringSoonCount int     `json:"expiring_soon_count"`
	TotalAlerts       int     `json:"total_alerts"`
	WastageValue      float64 `json:"wastage_value"`
}

// ExpiryBucket is one bar of the expiry timeline.
type ExpiryBucket struct {
	Period   string  `json:"period"`
	Quantity int     `json:"quantity"`
	Value    float64 `json:"value"`
}

// CategorySlice is one slice of the inventory-by-category chart.
type CategorySlice struct {
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Value    float64 `json:"value"`
}

// SalesTrendPoint is one day of the sales trend.
type SalesTrendPoint struct {
	Date     string  `json:"date"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// TopMedicine is one row of the top-medicines ranking.
type TopMedicine struct {
	MedicineID int     `json:"medicine_id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	Quantity   int     `json:"quantity"`
	Value      float64 `json:"value"`
}

// Stats returns the headline dashboard figures.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := s.c.get(ctx, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ExpiryTimeline returns stock quantities bucketed by time-to-expiry.
func (s *DashboardService) ExpiryTimeline(ctx context.Context) ([]ExpiryBucket, error) {
	var buckets []ExpiryBucket
	if err := s.c.get(ctx, "/dashboard/expiry-timeline", nil, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// InventoryByCategory returns stock grouped by category.
func (s *DashboardService) InventoryByCategory(ctx context.Context) ([]CategorySlice, error) {
	var slices []CategorySlice
	if err := s.c.get(ctx, "/dashboard/inventory-by-category", nil, &slices); err != nil {
		return nil, err
	}
	return slices, nil
}

// SalesTrends returns daily sales over the given window.
func (s *DashboardService) SalesTrends(ctx context.Context, days int) ([]SalesTrendPoint, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}

	var points []SalesTrendPoint
	if err := s.c.get(ctx, "/dashboard/sales-trends", q, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// TopMedicines ranks medicines by consumption or value.
func (s *DashboardService) TopMedicines(ctx context.Context, limit int, by string) ([]TopMedicine, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if by != "" {
		q.Set("by", by)
	}

	var top []TopMedicine
	if err := s.c.get(ctx, "/dashboard/top-medicines", q, &top); err != nil {
		return nil, err
	}
	return top, nil
}
