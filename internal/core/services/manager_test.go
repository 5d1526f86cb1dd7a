package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/ports/driven"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/extract"
)

func newTestManager(kv *fakeKV, source *fakeSource) *Manager {
	assembler := NewAssembler(source, nil, testAssemblerConfig())
	return NewManager(kv, assembler, &fakeFallback{}, "")
}

func TestManagerGetReturnsCachedPayload(t *testing.T) {
	kv := newFakeKV()
	seedCache(kv, DefaultCacheKey, "cached vault body")
	manager := newTestManager(kv, newFakeSource())

	payload := manager.Get(context.Background(), false)

	assert.Equal(t, domain.StatusOperational, payload.Status)
	assert.Equal(t, "cached vault body", payload.Content)
}

func TestManagerGetIsIdempotent(t *testing.T) {
	kv := newFakeKV()
	seedCache(kv, DefaultCacheKey, "stable content")
	manager := newTestManager(kv, newFakeSource())

	first := manager.Get(context.Background(), false)
	second := manager.Get(context.Background(), false)

	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, first.Status, second.Status)
	assert.Empty(t, kv.setKeys)
}

func TestManagerGetCacheMissNeedsRefresh(t *testing.T) {
	manager := newTestManager(newFakeKV(), newFakeSource())

	payload := manager.Get(context.Background(), false)

	assert.Equal(t, domain.StatusNeedsRefresh, payload.Status)
	assert.Zero(t, payload.TokenEstimate)
}

func TestManagerGetCacheUnreachableNeedsRefresh(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("redis timeout")
	manager := newTestManager(kv, newFakeSource())

	payload := manager.Get(context.Background(), false)
	assert.Equal(t, domain.StatusNeedsRefresh, payload.Status)
}

func TestManagerGetCorruptEntryNeedsRefresh(t *testing.T) {
	kv := newFakeKV()
	kv.data[DefaultCacheKey] = []byte("{definitely not a cached entry")
	manager := newTestManager(kv, newFakeSource())

	payload := manager.Get(context.Background(), false)
	assert.Equal(t, domain.StatusNeedsRefresh, payload.Status)
}

func TestManagerForceRefreshAssemblesAndCaches(t *testing.T) {
	source := newFakeSource()
	source.addFolder("f1", "00_EnforcementShell")
	source.addFile("f1", "d1", "rules.txt", extract.MimeText, []byte("fresh rules"))

	kv := newFakeKV()
	manager := newTestManager(kv, source)

	payload := manager.Get(context.Background(), true)
	require.Equal(t, domain.StatusOperational, payload.Status)
	assert.Contains(t, payload.Content, "fresh rules")
	assert.Contains(t, kv.setKeys, DefaultCacheKey)

	// The refreshed content is now served from cache.
	cached := manager.Get(context.Background(), false)
	assert.Equal(t, payload.Content, cached.Content)
}

func TestManagerRefreshFailureServesFallbackWithoutCaching(t *testing.T) {
	source := newFakeSource()
	source.listErr = errors.New("drive unreachable")

	kv := newFakeKV()
	manager := newTestManager(kv, source)

	payload, stats := manager.Refresh(context.Background())

	assert.Equal(t, domain.StatusFallback, payload.Status)
	assert.Nil(t, stats)
	assert.Empty(t, kv.setKeys)

	// A later plain read must not mistake the fallback for real data.
	after := manager.Get(context.Background(), false)
	assert.Equal(t, domain.StatusNeedsRefresh, after.Status)
}

func TestManagerRefreshFailureLeavesPriorCacheIntact(t *testing.T) {
	kv := newFakeKV()
	seedCache(kv, DefaultCacheKey, "older but valid vault")

	source := newFakeSource()
	source.listErr = errors.New("drive unreachable")
	manager := newTestManager(kv, source)

	payload, _ := manager.Refresh(context.Background())
	assert.Equal(t, domain.StatusFallback, payload.Status)

	after := manager.Get(context.Background(), false)
	assert.Equal(t, domain.StatusOperational, after.Status)
	assert.Equal(t, "older but valid vault", after.Content)
}

// stalledSource hangs every call until the context is cancelled,
// simulating an unresponsive document source.
type stalledSource struct{}

func (stalledSource) ListFolders(ctx context.Context, _ string) ([]driven.Folder, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stalledSource) ListFiles(ctx context.Context, _ string) ([]driven.File, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stalledSource) Download(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stalledSource) ExportText(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestManagerRefreshStalledSourceTimesOutToFallback(t *testing.T) {
	kv := newFakeKV()
	assembler := NewAssembler(stalledSource{}, nil, testAssemblerConfig())
	manager := NewManager(kv, assembler, &fakeFallback{}, "")
	manager.SetSourceTimeout(50 * time.Millisecond)

	start := time.Now()
	payload, stats := manager.Refresh(context.Background())

	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Equal(t, domain.StatusFallback, payload.Status)
	assert.Nil(t, stats)
	assert.Empty(t, kv.setKeys)
}

func TestManagerRefreshCacheWriteFailureStillServesContent(t *testing.T) {
	source := newFakeSource()
	source.addFolder("f1", "00_EnforcementShell")
	source.addFile("f1", "d1", "rules.txt", extract.MimeText, []byte("good content"))

	kv := newFakeKV()
	kv.setErr = errors.New("kv write refused")
	manager := newTestManager(kv, source)

	payload, stats := manager.Refresh(context.Background())

	assert.Equal(t, domain.StatusOperational, payload.Status)
	assert.Contains(t, payload.Content, "good content")
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.FilesStored)
}

func TestManagerCustomCacheKey(t *testing.T) {
	kv := newFakeKV()
	seedCache(kv, "custom_key", "custom content")
	assembler := NewAssembler(newFakeSource(), nil, testAssemblerConfig())
	manager := NewManager(kv, assembler, &fakeFallback{}, "custom_key")

	assert.Equal(t, "custom_key", manager.CacheKey())
	payload := manager.Get(context.Background(), false)
	assert.Equal(t, "custom content", payload.Content)
}
