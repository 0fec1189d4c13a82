package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// SupplierService talks to the /suppliers endpoints, including purchase orders.
type SupplierService struct {
	c *Client
}

// Supplier is a medicine vendor.
type Supplier struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	LeadTimeDays  int    `json:"lead_time_days,omitempty"`
	IsActive      bool   `json:"is_active"`
}

// SupplierCreate is the create/update payload.
type SupplierCreate struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	LeadTimeDays  int    `json:"lead_time_days,omitempty" validate:"gte=0"`
}

// PurchaseOrderItem is one line of a purchase order.
type PurchaseOrderItem struct {
	MedicineID int     `json:"medicine_id" validate:"required"`
	Quantity   int     `json:"quantity" validate:"required,gt=0"`
	UnitCost   float64 `json:"unit_cost,omitempty" validate:"gte=0"`
}

// PurchaseOrderCreate is the payload for a new purchase order. The client
// never retries a failed creation automatically; exactly-once is the
// server's contract.
type PurchaseOrderCreate struct {
	SupplierID int                 `json:"supplier_id" validate:"required"`
	Items      []PurchaseOrderItem `json:"items" validate:"required,min=1,dive"`
	Notes      string              `json:"notes,omitempty"`
}

// PurchaseOrder is a placed order.
type PurchaseOrder struct {
	ID         int       `json:"id"`
	SupplierID int       `json:"supplier_id"`
	Status     string    `json:"status"`
	TotalCost  float64   `json:"total_cost,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PurchaseOrderFilter narrows the purchase-order list.
type PurchaseOrderFilter struct {
	SupplierID int
	Status     string
}

// AIAnalysis is a best-effort advisory blob.
type AIAnalysis struct {
	Analysis string `json:"analysis"`
}

// List returns suppliers, active ones only by default.
func (s *SupplierService) List(ctx context.Context, activeOnly bool) ([]Supplier, error) {
	q := url.Values{}
	q.Set("active_only", strconv.FormatBool(activeOnly))

	var suppliers []Supplier
	if err := s.c.get(ctx, "/suppliers/", q, &suppliers); err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Get fetches a single supplier.
func (s *SupplierService) Get(ctx context.Context, id int) (*Supplier, error) {
	var supplier Supplier
	if err := s.c.get(ctx, fmt.Sprintf("/suppliers/%d", id), nil, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Create adds a supplier.
func (s *SupplierService) Create(ctx context.Context, req SupplierCreate) (*Supplier, error) {
	if err := s.c.validateStruct(req); err != nil {
		return nil, err
	}
	var supplier Supplier
	if err := s.c.postJSON(ctx, "/suppliers/", req, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Update replaces a supplier's fields.
func (s *SupplierService) Update(ctx context.Context, id int, req SupplierCreate) (*Supplier, error) {
	if err := s.c.validateStruct(req); err != nil {
		return nil, err
	}
	var supplier Supplier
	if err := s.c.putJSON(ctx, fmt.Sprintf("/suppliers/%d", id), req, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Delete removes a supplier.
func (s *SupplierService) Delete(ctx context.Context, id int) error {
	return s.c.delete(ctx, fmt.Sprintf("/suppliers/%d", id), nil)
}

// CreatePurchaseOrder places an order with a supplier.
func (s *SupplierService) CreatePurchaseOrder(ctx context.Context, req PurchaseOrderCreate) (*PurchaseOrder, error) {
	if err := s.c.validateStruct(req); err != nil {
		return nil, err
	}
	var po PurchaseOrder
	if err := s.c.postJSON(ctx, "/suppliers/purchase-orders", req, &po); err != nil {
		return nil, err
	}
	return &po, nil
}

// PurchaseOrders lists orders, optionally by supplier or status.
func (s *SupplierService) PurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, error) {
	q := url.Values{}
	if filter.SupplierID != 0 {
		q.Set("supplier_id", strconv.Itoa(filter.SupplierID))
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}

	var orders []PurchaseOrder
	if err := s.c.get(ctx, "/suppliers/purchase-orders", q, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// AIAnalysis returns advisory text about supplier performance.
func (s *SupplierService) AIAnalysis(ctx context.Context) (*AIAnalysis, error) {
	var analysis AIAnalysis
	if err := s.c.get(ctx, "/suppliers/ai-analysis", nil, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}
