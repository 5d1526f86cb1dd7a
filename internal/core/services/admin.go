package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/ports/driven"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/logger"
)

// Admin operations accepted by the vault-admin endpoint.
const (
	OpMigrate  = "migrate"
	OpValidate = "validate"
	OpRollback = "rollback"
	OpBackup   = "backup"
	OpStatus   = "status"
)

// MigrateResult reports a full source-to-cache migration run.
type MigrateResult struct {
	MigrationID string         `json:"migration_id"`
	Status      string         `json:"status"`
	Stats       *AssembleStats `json:"statistics,omitempty"`
	Log         []string       `json:"migration_log"`
	CompletedAt time.Time      `json:"completed_at"`
}

// ValidateResult reports an integrity check of the cached entry.
type ValidateResult struct {
	ValidationID   string    `json:"validation_id"`
	Status         string    `json:"status"`
	IntegrityCheck string    `json:"integrity_check"`
	EntryPresent   bool      `json:"entry_present"`
	Compressed     bool      `json:"compressed"`
	ContentLength  int       `json:"content_length"`
	Details        []string  `json:"validation_details"`
	CompletedAt    time.Time `json:"completed_at"`
}

// BackupResult reports a copy of the vault entry to a backup key.
type BackupResult struct {
	BackupID   string    `json:"backup_id"`
	Status     string    `json:"status"`
	BackupKey  string    `json:"backup_key"`
	BackupSize int       `json:"backup_size_bytes"`
	Log        []string  `json:"backup_log"`
	CreatedAt  time.Time `json:"created_at"`
}

// RollbackResult reports a restore from a backup key.
type RollbackResult struct {
	RollbackID     string    `json:"rollback_id"`
	Status         string    `json:"status"`
	BackupRestored string    `json:"backup_restored"`
	Log            []string  `json:"rollback_log"`
	CompletedAt    time.Time `json:"completed_at"`
}

// StatusResult reports current cache health.
type StatusResult struct {
	VaultHealthy        bool               `json:"vault_healthy"`
	CacheEntryPresent   bool               `json:"cache_entry_present"`
	VaultStatus         domain.VaultStatus `json:"vault_status"`
	TokenEstimate       int                `json:"tokens"`
	TotalFiles          int                `json:"total_files"`
	AvailableOperations []string           `json:"available_operations"`
	CheckedAt           time.Time          `json:"checked_at"`
}

// KeyOutcome is the per-key result of a purge.
type KeyOutcome struct {
	Key     string `json:"key"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// PurgeResult reports a full cache purge.
type PurgeResult struct {
	Status             string       `json:"status"`
	DeleteOperations   []KeyOutcome `json:"delete_operations"`
	KeysDeleted        int          `json:"keys_deleted"`
	TotalKeysAttempted int          `json:"total_keys_attempted"`
	PurgeEffective     bool         `json:"purge_effective"`
}

// InspectResult reports the raw state of the main cache key.
type InspectResult struct {
	MainKey       string   `json:"main_key"`
	Exists        bool     `json:"exists"`
	EntryBytes    int      `json:"entry_bytes"`
	Compressed    bool     `json:"compressed"`
	ContentLength int      `json:"content_length"`
	Decodable     bool     `json:"decodable"`
	OtherKeys     []string `json:"other_keys_found"`
}

// Admin performs administrative operations against the vault cache.
type Admin struct {
	kv        driven.KVStore
	manager   *Manager
	purgeKeys []string
}

// NewAdmin creates the admin service. purgeKeys lists every cache key a
// purge should delete in addition to the manager's main key.
func NewAdmin(kv driven.KVStore, manager *Manager, purgeKeys []string) *Admin {
	return &Admin{kv: kv, manager: manager, purgeKeys: purgeKeys}
}

// Migrate runs a full refresh through the manager and reports its stats.
func (a *Admin) Migrate(ctx context.Context) *MigrateResult {
	logger.Section("Vault migration")

	payload, stats := a.manager.Refresh(ctx)
	result := &MigrateResult{CompletedAt: time.Now().UTC()}

	if payload.Status == domain.StatusFallback || stats == nil {
		result.MigrationID = newOperationID("migration")
		result.Status = "failed"
		result.Log = []string{
			"Started migration process",
			"Document source unreachable, fallback payload returned",
			"Cache left untouched",
		}
		return result
	}

	result.MigrationID = stats.MigrationID
	result.Status = "completed"
	result.Stats = stats
	result.Log = []string{
		"Started migration process",
		fmt.Sprintf("Processed %d folders", stats.FoldersProcessed),
		fmt.Sprintf("Stored %d of %d files", stats.FilesStored, stats.FilesProcessed),
		"Cache entry replaced",
	}
	return result
}

// Validate re-reads the cached entry and round-trip checks it.
func (a *Admin) Validate(ctx context.Context) *ValidateResult {
	result := &ValidateResult{
		ValidationID: newOperationID("validation"),
		CompletedAt:  time.Now().UTC(),
		Details:      []string{},
	}

	value, ok, err := a.kv.Get(ctx, a.manager.CacheKey())
	if err != nil {
		result.Status = "failed"
		result.IntegrityCheck = "failed"
		result.Details = append(result.Details, fmt.Sprintf("Cache unreachable: %v", err))
		return result
	}
	if !ok {
		result.Status = "completed"
		result.IntegrityCheck = "empty"
		result.Details = append(result.Details, "No cache entry present")
		return result
	}
	result.EntryPresent = true

	var entry domain.CachedEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		result.Status = "failed"
		result.IntegrityCheck = "failed"
		result.Details = append(result.Details, fmt.Sprintf("Entry is not valid JSON: %v", err))
		return result
	}
	result.Compressed = entry.Compressed

	payload, err := DecodeEntry(&entry)
	if err != nil {
		result.Status = "failed"
		result.IntegrityCheck = "failed"
		result.Details = append(result.Details, fmt.Sprintf("Entry decode failed: %v", err))
		return result
	}

	result.Status = "completed"
	result.IntegrityCheck = "passed"
	result.ContentLength = len(payload.Content)
	result.Details = append(result.Details,
		"Entry decoded successfully",
		fmt.Sprintf("Content length: %d characters", len(payload.Content)),
		fmt.Sprintf("Folders loaded: %d", len(payload.FoldersLoaded)),
	)
	return result
}

// Backup copies the current vault entry to a backup key.
func (a *Admin) Backup(ctx context.Context) *BackupResult {
	result := &BackupResult{
		BackupID:  newOperationID("backup"),
		CreatedAt: time.Now().UTC(),
		Log:       []string{"Started backup process"},
	}

	value, ok, err := a.kv.Get(ctx, a.manager.CacheKey())
	if err != nil {
		result.Status = "failed"
		result.Log = append(result.Log, fmt.Sprintf("Backup failed: %v", err))
		return result
	}
	if !ok {
		result.Status = "failed"
		result.Log = append(result.Log, "No cache entry to back up")
		return result
	}

	result.BackupKey = a.backupKey(result.BackupID)
	if err := a.kv.Set(ctx, result.BackupKey, value); err != nil {
		result.Status = "failed"
		result.Log = append(result.Log, fmt.Sprintf("Backup write failed: %v", err))
		return result
	}

	result.Status = "completed"
	result.BackupSize = len(value)
	result.Log = append(result.Log,
		fmt.Sprintf("Copied %d bytes to %s", len(value), result.BackupKey),
		"Backup completed successfully",
	)
	return result
}

// Rollback restores the vault entry from a backup key.
func (a *Admin) Rollback(ctx context.Context, backupID string) (*RollbackResult, error) {
	if backupID == "" {
		return nil, fmt.Errorf("%w: backup_id required for rollback operation", domain.ErrInvalidInput)
	}

	result := &RollbackResult{
		RollbackID:  newOperationID("rollback"),
		CompletedAt: time.Now().UTC(),
		Log:         []string{"Started rollback process"},
	}

	value, ok, err := a.kv.Get(ctx, a.backupKey(backupID))
	if err != nil {
		result.Status = "failed"
		result.Log = append(result.Log, fmt.Sprintf("Backup read failed: %v", err))
		return result, nil
	}
	if !ok {
		result.Status = "failed"
		result.Log = append(result.Log, fmt.Sprintf("Backup not found: %s", backupID))
		return result, nil
	}

	if err := a.kv.Set(ctx, a.manager.CacheKey(), value); err != nil {
		result.Status = "failed"
		result.Log = append(result.Log, fmt.Sprintf("Restore write failed: %v", err))
		return result, nil
	}

	result.Status = "completed"
	result.BackupRestored = backupID
	result.Log = append(result.Log,
		fmt.Sprintf("Restored %d bytes from backup %s", len(value), backupID),
		"Rollback completed successfully",
	)
	return result, nil
}

// Status reports current cache health without side effects.
func (a *Admin) Status(ctx context.Context) *StatusResult {
	result := &StatusResult{
		AvailableOperations: []string{OpMigrate, OpValidate, OpRollback, OpBackup, OpStatus},
		CheckedAt:           time.Now().UTC(),
	}

	payload := a.manager.Get(ctx, false)
	result.VaultStatus = payload.Status
	result.VaultHealthy = payload.Status == domain.StatusOperational
	result.CacheEntryPresent = payload.Status == domain.StatusOperational
	result.TokenEstimate = payload.TokenEstimate
	result.TotalFiles = payload.TotalFiles
	return result
}

// Purge deletes every known cache key and reports per-key outcomes.
func (a *Admin) Purge(ctx context.Context) *PurgeResult {
	logger.Section("Cache purge")

	keys := append([]string{a.manager.CacheKey()}, a.purgeKeys...)
	result := &PurgeResult{
		DeleteOperations:   make([]KeyOutcome, 0, len(keys)),
		TotalKeysAttempted: len(keys),
	}

	effective := true
	for _, key := range keys {
		outcome := KeyOutcome{Key: key}
		if err := a.kv.Delete(ctx, key); err != nil {
			outcome.Error = err.Error()
			effective = false
			logger.Warn("Failed to delete key %s: %v", key, err)
		} else {
			outcome.Deleted = true
			result.KeysDeleted++
			logger.Debug("Deleted key: %s", key)
		}
		result.DeleteOperations = append(result.DeleteOperations, outcome)
	}

	result.PurgeEffective = effective
	if effective {
		result.Status = "success"
	} else {
		result.Status = "partial"
	}
	return result
}

// Inspect reports the raw state of the main cache key and any stray
// legacy keys still present.
func (a *Admin) Inspect(ctx context.Context) *InspectResult {
	result := &InspectResult{
		MainKey:   a.manager.CacheKey(),
		OtherKeys: []string{},
	}

	value, ok, err := a.kv.Get(ctx, a.manager.CacheKey())
	if err == nil && ok {
		result.Exists = true
		result.EntryBytes = len(value)

		var entry domain.CachedEntry
		if json.Unmarshal(value, &entry) == nil {
			result.Compressed = entry.Compressed
			if payload, err := DecodeEntry(&entry); err == nil {
				result.Decodable = true
				result.ContentLength = len(payload.Content)
			}
		}
	}

	for _, key := range a.purgeKeys {
		if _, ok, err := a.kv.Get(ctx, key); err == nil && ok {
			result.OtherKeys = append(result.OtherKeys, key)
		}
	}
	return result
}

func (a *Admin) backupKey(backupID string) string {
	return a.manager.CacheKey() + "/_backup/" + backupID
}
