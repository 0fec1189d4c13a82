package api

import (
	"context"

	"github.com/google/uuid"
)

// ChatbotService talks to the /chatbot endpoints.
type ChatbotService struct {
	c *Client
}

// ChatRequest is one user message in a conversation.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Response         string   `json:"response"`
	SessionID        string   `json:"session_id"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
}

// Chat sends a message. When sessionID is empty a new conversation is started
// with a client-minted UUID so follow-up messages stay threaded.
func (s *ChatbotService) Chat(ctx context.Context, message, sessionID string) (*ChatResponse, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var resp ChatResponse
	if err := s.c.postJSON(ctx, "/chatbot/chat", ChatRequest{Message: message, SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		resp.SessionID = sessionID
	}
	return &resp, nil
}

// Suggestions returns conversation starters.
func (s *ChatbotService) Suggestions(ctx context.Context) ([]string, error) {
	var payload struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := s.c.get(ctx, "/chatbot/suggestions", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Suggestions, nil
}
