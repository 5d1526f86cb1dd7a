// Package fallback provides the emergency vault payload served when
// the document source is unreachable and no cache entry exists.
package fallback

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/ports/driven"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/logger"
)

// defaultContent is the compiled-in emergency vault. It carries the
// core business constraints so chat stays grounded even with every
// external system down.
const defaultContent = `=== SITEMONKEYS BUSINESS VALIDATION VAULT (FALLBACK) ===

=== CORE BUSINESS MODEL ===
SiteMonkeys provides done-for-you website and business validation services.
Pricing tiers: Boost $697, Climb $1,497, Lead $2,997.
All recommendations must respect founder budget constraints and zero-failure delivery.

=== FINANCIAL CONSTRAINTS ===
Target margins of 85 percent or better on all service tiers.
No recommendation may assume outside funding or unbounded ad spend.
Cash-flow projections must survive a 90-day zero-revenue stress test.

=== ZERO-FAILURE PROTOCOLS ===
Every client deliverable is validated before launch.
No speculative claims: recommendations cite the constraint they satisfy.
Escalate anything that risks client money beyond the agreed tier price.

=== OPERATING FOLDERS ===
00_EnforcementShell
01_Core_Directives
02_Playbooks
03_Pricing_Tiers
04_Client_Delivery
05_Legal_Compliance`

// fallbackFolders mirrors the folder set the live vault loads from.
var fallbackFolders = []string{
	"00_EnforcementShell",
	"01_Core_Directives",
	"02_Playbooks",
	"03_Pricing_Tiers",
	"04_Client_Delivery",
	"05_Legal_Compliance",
}

// Store serves the emergency payload. When a file path is configured
// its contents override the compiled-in default and are reloaded on
// change via fsnotify.
type Store struct {
	mu      sync.RWMutex
	content string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

var _ driven.FallbackStore = (*Store)(nil)

// NewStore creates a fallback store serving the compiled-in content.
func NewStore() *Store {
	return &Store{content: defaultContent}
}

// NewStoreFromFile creates a fallback store that loads content from
// path and watches it for changes. The file must exist at startup.
func NewStoreFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files on save
	// and a file watch is lost after the first rename.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch fallback directory: %w", err)
	}

	s := &Store{
		content: string(data),
		watcher: watcher,
		done:    make(chan struct{}),
	}
	go s.watch(path)
	return s, nil
}

// Payload returns the emergency vault payload with FALLBACK status.
func (s *Store) Payload() *domain.VaultPayload {
	s.mu.RLock()
	content := s.content
	s.mu.RUnlock()

	tokens := domain.EstimateTokens(content)
	return &domain.VaultPayload{
		Content:       content,
		TokenEstimate: tokens,
		EstimatedCost: domain.EstimateCost(tokens),
		FoldersLoaded: append([]string(nil), fallbackFolders...),
		TotalFiles:    0,
		Status:        domain.StatusFallback,
	}
}

// Close stops the file watcher if one is running.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	return s.watcher.Close()
}

func (s *Store) watch(path string) {
	target := filepath.Clean(path)
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s.reload(path)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Fallback file watcher error: %v", err)
		}
	}
}

func (s *Store) reload(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to reload fallback file: %v", err)
		return
	}
	if len(data) == 0 {
		// Editors often truncate before writing; keep the old content.
		return
	}

	s.mu.Lock()
	s.content = string(data)
	s.mu.Unlock()
	logger.Info("Fallback content reloaded from %s", path)
}
