package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/logger"
)

// chatRequest is the POST /chat request body. Context optionally
// carries caller-side conversation memory appended after the vault.
type chatRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

// chatResponse is the POST /chat response body.
type chatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleChat answers a user message with vault context injected as the
// system prompt. The vault content comes from the cache when healthy
// and the fallback payload otherwise; chat never triggers a refresh.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	vault := s.manager.Get(r.Context(), false)
	vaultContent := vault.Content
	if vault.Status != domain.StatusOperational {
		vaultContent = s.fallback.Payload().Content
		logger.Debug("Chat serving with fallback vault (cache status %s)", vault.Status)
	}
	if req.Context != "" {
		vaultContent += "\n\n=== CONVERSATION CONTEXT ===\n" + req.Context
	}

	reply, err := s.chat.Respond(r.Context(), req.Message, vaultContent)
	if err != nil {
		if errors.Is(err, domain.ErrNoMessage) {
			writeJSON(w, http.StatusBadRequest, chatResponse{Success: false, Error: err.Error()})
			return
		}
		logger.Warn("Chat completion failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, chatResponse{
			Success: false,
			Error:   "completion failed, please retry",
		})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Success: true, Response: reply})
}
