package httpapi

import "net/http"

// handlePurge deletes every known cache key. Exposed as GET to match
// the hosted deployment's browser-triggered purge.
func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result := s.admin.Purge(r.Context())
	status := http.StatusOK
	if !result.PurgeEffective {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}
