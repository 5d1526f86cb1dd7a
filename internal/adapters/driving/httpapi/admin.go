package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/services"
)

// adminRequest is the POST /vault-admin request body.
type adminRequest struct {
	Operation string `json:"operation"`
	BackupID  string `json:"backup_id,omitempty"`
}

// adminResponse is the envelope every admin operation returns.
type adminResponse struct {
	Status    string    `json:"status"`
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// handleVaultAdmin dispatches admin operations. GET reports status;
// POST runs the operation named in the body.
func (s *Server) handleVaultAdmin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, adminResponse{
			Status:    "ok",
			Data:      s.admin.Status(r.Context()),
			Timestamp: time.Now().UTC(),
		})
	case http.MethodPost:
		s.runAdminOperation(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) runAdminOperation(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, adminResponse{
			Status:    "error",
			Message:   "invalid JSON body",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	ctx := r.Context()
	var data any
	switch req.Operation {
	case services.OpMigrate:
		data = s.admin.Migrate(ctx)
	case services.OpValidate:
		data = s.admin.Validate(ctx)
	case services.OpBackup:
		data = s.admin.Backup(ctx)
	case services.OpRollback:
		result, err := s.admin.Rollback(ctx, req.BackupID)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, domain.ErrInvalidInput) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, adminResponse{
				Status:    "error",
				Message:   err.Error(),
				Timestamp: time.Now().UTC(),
			})
			return
		}
		data = result
	case services.OpStatus:
		data = s.admin.Status(ctx)
	default:
		writeJSON(w, http.StatusBadRequest, adminResponse{
			Status:    "error",
			Message:   "unknown operation: " + req.Operation,
			Timestamp: time.Now().UTC(),
		})
		return
	}

	writeJSON(w, http.StatusOK, adminResponse{
		Status:    "ok",
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
