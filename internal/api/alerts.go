package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// AlertService talks to the /alerts endpoints.
type AlertService struct {
	c *Client
}

// Alert is a server-generated stock or expiry warning. Its only transition is
// unacknowledged -> acknowledged.
type Alert struct {
	ID             int       `json:"id"`
	AlertType      string    `json:"alert_type"`
	MedicineID     int       `json:"medicine_id,omitempty"`
	BatchID        int       `json:"batch_id,omitempty"`
	Message        string    `json:"message"`
	Severity       string    `json:"severity"`
	IsAcknowledged bool      `json:"is_acknowledged"`
	CreatedAt      time.Time `json:"created_at"`
}

// AlertFilter narrows the alert list.
type AlertFilter struct {
	AlertType    string
	Severity     string
	Acknowledged *bool
}

// AlertStats summarizes alert counts.
type AlertStats struct {
	TotalAlerts    int            `json:"total_alerts"`
	Unacknowledged int            `json:"unacknowledged"`
	ByType         map[string]int `json:"by_type"`
	BySeverity     map[string]int `json:"by_severity"`
}

// ScanResult reports the outcome of a server-side alert scan.
type ScanResult struct {
	Message string `json:"message"`
}

// List returns alerts matching the filter.
func (s *AlertService) List(ctx context.Context, filter AlertFilter) ([]Alert, error) {
	q := url.Values{}
	if filter.AlertType != "" {
		q.Set("alert_type", filter.AlertType)
	}
	if filter.Severity != "" {
		q.Set("severity", filter.Severity)
	}
	if filter.Acknowledged != nil {
		q.Set("acknowledged", strconv.FormatBool(*filter.Acknowledged))
	}

	var alerts []Alert
	if err := s.c.get(ctx, "/alerts/", q, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Unacknowledged returns all open alerts.
func (s *AlertService) Unacknowledged(ctx context.Context) ([]Alert, error) {
	var alerts []Alert
	if err := s.c.get(ctx, "/alerts/unacknowledged", nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Acknowledge marks an alert as seen. Acknowledging an already-acknowledged
// alert is a no-op on the server; callers may also receive 409 Conflict from
// stricter backends and should treat both as terminal.
func (s *AlertService) Acknowledge(ctx context.Context, alertID int) (*Alert, error) {
	var alert Alert
	if err := s.c.postJSON(ctx, fmt.Sprintf("/alerts/%d/acknowledge", alertID), nil, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// Stats returns aggregate alert counts.
func (s *AlertService) Stats(ctx context.Context) (*AlertStats, error) {
	var stats AlertStats
	if err := s.c.get(ctx, "/alerts/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RunScan asks the server to re-evaluate alert conditions now.
func (s *AlertService) RunScan(ctx context.Context) (*ScanResult, error) {
	var result ScanResult
	if err := s.c.postJSON(ctx, "/alerts/run-system-scan", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
