package mockapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pharmadash/pharmadash/internal/api"
)

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var acknowledged *bool
	if v := q.Get("acknowledged"); v != "" {
		b := v == "true"
		acknowledged = &b
	}

	writeJSON(w, http.StatusOK, s.store.Alerts(q.Get("alert_type"), q.Get("severity"), acknowledged))
}

func (s *Server) handleUnacknowledgedAlerts(w http.ResponseWriter, r *http.Request) {
	unacked := false
	writeJSON(w, http.StatusOK, s.store.Alerts("", "", &unacked))
}

// handleAcknowledgeAlert is idempotent: re-acknowledging returns the alert
// unchanged with 200.
func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid alert id")
		return
	}

	alert, ok := s.store.AcknowledgeAlert(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Alert not found")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleAlertStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.AlertStats())
}

func (s *Server) handleRunScan(w http.ResponseWriter, r *http.Request) {
	created := s.store.ScanForAlerts()
	writeJSON(w, http.StatusOK, api.ScanResult{
		Message: "System scan complete, " + strconv.Itoa(created) + " new alerts raised",
	})
}
