package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/logger"
)

// writeJSON sends a JSON response with the given status code. Every
// endpoint responds with JSON, including errors.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}

// writeError sends a JSON error body in the chat envelope shape.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
