package mockapi

import (
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pharmadash/pharmadash/internal/api"
)

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Orders())
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req api.PrescriptionOrderCreate
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	order := s.store.CreateOrder(req)
	s.logger.Info().
		Int("order_id", order.ID).
		Str("notification_method", order.NotificationMethod).
		Msg("prescription order placed")
	writeJSON(w, http.StatusCreated, order)
}

// handleUploadPrescription stores nothing; it mints a server-side path the
// way the production server does, to be referenced by a later order create.
func (s *Server) handleUploadPrescription(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(api.MaxUploadSize); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file field is required")
		return
	}
	file.Close()

	stored := "uploads/prescriptions/" + uuid.NewString() + filepath.Ext(header.Filename)
	writeJSON(w, http.StatusOK, api.PrescriptionUpload{Filepath: stored})
}
