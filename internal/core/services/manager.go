package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/ports/driven"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/logger"
)

// DefaultCacheKey is the cache key holding the assembled vault entry.
const DefaultCacheKey = "sitemonkeys_vault"

// DefaultSourceTimeout bounds one full refresh against the document
// source. A stalled source call folds into the fallback path instead
// of hanging the request.
const DefaultSourceTimeout = 60 * time.Second

// Manager orchestrates "read cached vault, else refresh from source,
// else fall back". Reads are side-effect free; refreshes are serialised
// in-process so at most one writer runs at a time. The fallback payload
// is never written to the cache, so a later read reports NEEDS_REFRESH
// instead of mistaking the fallback for real data.
type Manager struct {
	kv            driven.KVStore
	assembler     *Assembler
	fallback      driven.FallbackStore
	key           string
	sourceTimeout time.Duration

	refreshMu sync.Mutex
}

// NewManager creates a vault cache manager. key defaults to
// DefaultCacheKey when empty.
func NewManager(kv driven.KVStore, assembler *Assembler, fallback driven.FallbackStore, key string) *Manager {
	if key == "" {
		key = DefaultCacheKey
	}
	return &Manager{
		kv:            kv,
		assembler:     assembler,
		fallback:      fallback,
		key:           key,
		sourceTimeout: DefaultSourceTimeout,
	}
}

// SetSourceTimeout overrides the per-refresh deadline. Non-positive
// values are ignored.
func (m *Manager) SetSourceTimeout(d time.Duration) {
	if d > 0 {
		m.sourceTimeout = d
	}
}

// CacheKey returns the cache key the manager reads and writes.
func (m *Manager) CacheKey() string {
	return m.key
}

// Get returns the current vault payload. With forceRefresh the vault is
// re-assembled from the document source; otherwise only the cache is
// consulted. Get is total: failures are folded into the payload status.
func (m *Manager) Get(ctx context.Context, forceRefresh bool) *domain.VaultPayload {
	if forceRefresh {
		payload, _ := m.Refresh(ctx)
		return payload
	}

	payload, err := m.readCached(ctx)
	if err != nil {
		logger.Debug("Cache read failed, reporting refresh needed: %v", err)
		return domain.NewNeedsRefreshPayload()
	}
	return payload
}

// Refresh re-assembles the vault from the document source and persists
// it. On assembly failure the static fallback payload is returned and
// the cache is left untouched. Stats are nil when assembly failed.
func (m *Manager) Refresh(ctx context.Context) (*domain.VaultPayload, *AssembleStats) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.sourceTimeout)
	defer cancel()

	payload, stats, err := m.assembler.Assemble(ctx)
	if err != nil {
		logger.Warn("Vault refresh failed, serving fallback: %v", err)
		return m.fallback.Payload(), nil
	}

	if err := m.store(ctx, payload); err != nil {
		// Content is still good for this request; only caching failed.
		logger.Warn("Failed to cache refreshed vault: %v", err)
	}
	return payload, stats
}

// readCached loads and decodes the cached vault entry.
func (m *Manager) readCached(ctx context.Context) (*domain.VaultPayload, error) {
	value, ok, err := m.kv.Get(ctx, m.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	var entry domain.CachedEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		return nil, fmt.Errorf("%w: unmarshal entry: %v", domain.ErrDecodeCorruption, err)
	}

	payload, err := DecodeEntry(&entry)
	if err != nil {
		return nil, err
	}
	if payload.Content == "" {
		return nil, fmt.Errorf("%w: empty content", domain.ErrDecodeCorruption)
	}

	payload.Status = domain.StatusOperational
	return payload, nil
}

// store encodes and writes a payload, replacing any prior entry.
func (m *Manager) store(ctx context.Context, payload *domain.VaultPayload) error {
	entry, err := EncodeEntry(payload)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := m.kv.Set(ctx, m.key, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}
