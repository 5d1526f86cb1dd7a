package httpapi

import (
	"net/http"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/ports/driven"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/services"
)

// Server wires the vault services into HTTP handlers.
type Server struct {
	chat     *services.ChatService
	manager  *services.Manager
	admin    *services.Admin
	fallback driven.FallbackStore
}

// NewServer creates the HTTP server facade.
func NewServer(
	chat *services.ChatService,
	manager *services.Manager,
	admin *services.Admin,
	fallback driven.FallbackStore,
) *Server {
	return &Server{chat: chat, manager: manager, admin: admin, fallback: fallback}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/vault", s.handleVault)
	mux.HandleFunc("/vault-admin", s.handleVaultAdmin)
	mux.HandleFunc("/purge", s.handlePurge)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return corsMiddleware(mux)
}

// corsMiddleware allows browser clients from any origin, matching the
// hosted deployment's open CORS policy.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
