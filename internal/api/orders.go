package api

import (
	"context"
	"time"
)

// OrderService talks to the /orders endpoints (customer prescription requests).
type OrderService struct {
	c *Client
}

// PrescriptionOrderCreate is the payload for a new customer order.
type PrescriptionOrderCreate struct {
	CustomerName          string `json:"customer_name" validate:"required"`
	ContactInfo           string `json:"contact_info" validate:"required"`
	NotificationMethod    string `json:"notification_method" validate:"required,oneof=whatsapp sms email"`
	Notes                 string `json:"notes,omitempty"`
	PrescriptionImagePath string `json:"prescription_image_path,omitempty"`
}

// PrescriptionOrder is a placed customer order.
type PrescriptionOrder struct {
	ID                 int       `json:"id"`
	CustomerName       string    `json:"customer_name"`
	ContactInfo        string    `json:"contact_info"`
	NotificationMethod string    `json:"notification_method"`
	Status             string    `json:"status"`
	Message            string    `json:"message,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// PrescriptionUpload is the stored location of an uploaded prescription image.
type PrescriptionUpload struct {
	Filepath string `json:"filepath"`
}

// Create places a prescription order. The server triggers the customer
// notification as part of the call.
func (s *OrderService) Create(ctx context.Context, req PrescriptionOrderCreate) (*PrescriptionOrder, error) {
	if err := s.c.validateStruct(req); err != nil {
		return nil, err
	}
	var order PrescriptionOrder
	if err := s.c.postJSON(ctx, "/orders/create", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UploadPrescription uploads a prescription image and returns its stored path,
// to be referenced in a subsequent Create call.
func (s *OrderService) UploadPrescription(ctx context.Context, path string, progress ProgressFunc) (*PrescriptionUpload, error) {
	file, err := OpenPrescriptionFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var upload PrescriptionUpload
	if err := s.c.postMultipart(ctx, "/orders/upload-prescription", "file", file.Name, file, file.Size, &upload, progress); err != nil {
		return nil, err
	}
	return &upload, nil
}

// List returns all orders, newest first.
func (s *OrderService) List(ctx context.Context) ([]PrescriptionOrder, error) {
	var orders []PrescriptionOrder
	if err := s.c.get(ctx, "/orders/", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
