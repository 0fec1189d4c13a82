package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pharmadash/pharmadash/internal/api"
)

var chatSuggestions = []string{
	"Which medicines are running low on stock?",
	"What expires in the next 30 days?",
	"Show me the top selling medicines this month",
	"Do I have any unacknowledged alerts?",
}

// handleChat answers from live store state with keyword matching standing in
// for the production language model.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "message is required")
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp := api.ChatResponse{
		SessionID:        sessionID,
		SuggestedActions: []string{"View dashboard", "Check alerts"},
	}

	message := strings.ToLower(req.Message)
	switch {
	case strings.Contains(message, "low") || strings.Contains(message, "stock"):
		low := s.store.StockLevels(true)
		names := make([]string, 0, len(low))
		for _, level := range low {
			names = append(names, level.Name+" ("+strconv.Itoa(level.TotalQuantity)+" units)")
		}
		if len(names) == 0 {
			resp.Response = "No medicines are currently below the low-stock threshold."
		} else {
			resp.Response = "Low on stock: " + strings.Join(names, ", ") + "."
		}
	case strings.Contains(message, "alert"):
		stats := s.store.AlertStats()
		resp.Response = "You have " + strconv.Itoa(stats.Unacknowledged) + " unacknowledged alerts out of " +
			strconv.Itoa(stats.TotalAlerts) + " total."
	case strings.Contains(message, "expir"):
		unacked := false
		expiry := s.store.Alerts("expiry", "", &unacked)
		resp.Response = strconv.Itoa(len(expiry)) + " open expiry warnings. Check the expiry timeline for details."
	default:
		resp.Response = "I can help with stock levels, expiry timelines and alerts. Try one of the suggestions."
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChatSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": chatSuggestions})
}
