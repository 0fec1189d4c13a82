package mockapi

import (
	"encoding/json"
	"net/http"
)

// The wire shape matches the production inventory server: successful responses
// are bare JSON payloads, failures are {"detail": "..."} with the status code
// carrying the error class.

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, statusCode int, detail string) {
	writeJSON(w, statusCode, map[string]string{"detail": detail})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
