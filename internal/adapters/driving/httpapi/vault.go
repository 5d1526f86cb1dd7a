package httpapi

import (
	"net/http"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
)

// vaultResponse wraps the payload with a human-readable message.
type vaultResponse struct {
	*domain.VaultPayload
	Message string `json:"message"`
}

// handleVault returns the current vault payload. ?refresh=true forces
// re-assembly from the document source.
func (s *Server) handleVault(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	payload := s.manager.Get(r.Context(), refresh)

	writeJSON(w, http.StatusOK, vaultResponse{
		VaultPayload: payload,
		Message:      statusMessage(payload.Status),
	})
}

func statusMessage(status domain.VaultStatus) string {
	switch status {
	case domain.StatusOperational:
		return "Vault loaded and operational"
	case domain.StatusFallback:
		return "Document source unavailable, serving fallback vault"
	case domain.StatusNeedsRefresh:
		return "No cached vault available, refresh required"
	default:
		return "Vault unavailable"
	}
}
