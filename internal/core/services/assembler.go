package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/ports/driven"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/extract"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/logger"
)

// DefaultMaxFileSize is the per-file size limit for assembly (10MB).
// Larger files are skipped with a warning, not an error.
const DefaultMaxFileSize = 10 * 1024 * 1024

// vaultHeader opens every assembled vault.
const vaultHeader = "=== SITEMONKEYS BUSINESS VALIDATION VAULT ===\n\n"

// AssemblerConfig configures vault assembly.
type AssemblerConfig struct {
	// RootFolderID is the document-source folder containing the vault.
	RootFolderID string
	// TargetFolders is the allow-list of folder names to include.
	// Folders outside this set are skipped and logged, never included.
	TargetFolders []string
	// MaxFileSize is the per-file byte limit (default DefaultMaxFileSize).
	MaxFileSize int64
	// KeyPrefix is the cache key prefix for folder index records.
	KeyPrefix string
}

// AssembleStats summarises one assembly run.
type AssembleStats struct {
	MigrationID      string    `json:"migration_id"`
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
	FoldersProcessed int       `json:"folders_processed"`
	FilesProcessed   int       `json:"files_processed"`
	FilesStored      int       `json:"files_stored"`
	SkippedFiles     int       `json:"skipped_files"`
	TotalSizeBytes   int       `json:"total_size_bytes"`
	Errors           []string  `json:"errors"`
	Warnings         []string  `json:"warnings"`
}

// Assembler walks the allow-listed vault folders, extracts each file,
// and concatenates the results into one annotated text blob. Single
// file or folder failures become inline diagnostics; only an
// unreachable source aborts the run.
type Assembler struct {
	source driven.DocumentSource
	kv     driven.KVStore // optional, for diagnostic folder indexes
	cfg    AssemblerConfig
}

// NewAssembler creates a vault assembler. kv may be nil; folder index
// records are then skipped.
func NewAssembler(source driven.DocumentSource, kv driven.KVStore, cfg AssemblerConfig) *Assembler {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &Assembler{source: source, kv: kv, cfg: cfg}
}

// Assemble builds a fresh vault payload from the document source.
func (a *Assembler) Assemble(ctx context.Context) (*domain.VaultPayload, *AssembleStats, error) {
	stats := &AssembleStats{
		MigrationID: newOperationID("migration"),
		StartedAt:   time.Now().UTC(),
		Errors:      []string{},
		Warnings:    []string{},
	}

	folders, err := a.source.ListFolders(ctx, a.cfg.RootFolderID)
	if err != nil {
		stats.CompletedAt = time.Now().UTC()
		return nil, stats, fmt.Errorf("%w: list folders: %w", domain.ErrSourceUnavailable, err)
	}

	allowed := make(map[string]bool, len(a.cfg.TargetFolders))
	for _, name := range a.cfg.TargetFolders {
		allowed[name] = true
	}

	retained := make([]driven.Folder, 0, len(folders))
	for _, folder := range folders {
		if !allowed[folder.Name] {
			logger.Debug("Skipping folder outside target set: %s", folder.Name)
			continue
		}
		retained = append(retained, folder)
	}

	// Source listing order is not guaranteed stable; sort by name so
	// repeated refreshes produce identical content.
	sort.Slice(retained, func(i, j int) bool { return retained[i].Name < retained[j].Name })

	var buf strings.Builder
	buf.WriteString(vaultHeader)

	foldersLoaded := make([]string, 0, len(retained))
	for _, folder := range retained {
		logger.Info("Processing folder: %s", folder.Name)
		stats.FoldersProcessed++
		foldersLoaded = append(foldersLoaded, folder.Name)
		a.assembleFolder(ctx, folder, &buf, stats)
	}

	writeSummaryFooter(&buf, stats)

	payload := domain.NewOperationalPayload(buf.String(), foldersLoaded, stats.FilesProcessed)
	stats.CompletedAt = time.Now().UTC()

	a.storeMasterIndex(ctx, stats)

	logger.Info("Assembly complete: %d folders, %d files stored, %d errors",
		stats.FoldersProcessed, stats.FilesStored, len(stats.Errors))
	return payload, stats, nil
}

// assembleFolder appends one folder's sections to the buffer. Failures
// inside the folder are absorbed as diagnostics.
func (a *Assembler) assembleFolder(
	ctx context.Context, folder driven.Folder, buf *strings.Builder, stats *AssembleStats,
) {
	files, err := a.source.ListFiles(ctx, folder.ID)
	if err != nil {
		msg := fmt.Sprintf("Error processing folder %s: %v", folder.Name, err)
		stats.Errors = append(stats.Errors, msg)
		fmt.Fprintf(buf, "=== %s ===\n[folder listing failed: %v]\n", folder.Name, err)
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	storedFiles := make([]string, 0, len(files))
	for _, file := range files {
		if file.MIMEType == extract.MimeFolder {
			logger.Debug("Subfolder detected, skipping: %s/%s", folder.Name, file.Name)
			continue
		}

		if file.Size > a.cfg.MaxFileSize {
			warning := fmt.Sprintf("Skipped large file: %s/%s (%d bytes)", folder.Name, file.Name, file.Size)
			stats.Warnings = append(stats.Warnings, warning)
			stats.SkippedFiles++
			logger.Warn("%s", warning)
			continue
		}

		stats.FilesProcessed++
		logger.Debug("Processing: %s/%s (%s)", folder.Name, file.Name, file.MIMEType)

		text := a.extractFile(ctx, file)
		fmt.Fprintf(buf, "=== %s ===\n%s\n", file.Name, text)

		if extract.IsDiagnostic(text) {
			stats.Errors = append(stats.Errors, fmt.Sprintf("No content extracted: %s/%s", folder.Name, file.Name))
			continue
		}

		stats.FilesStored++
		stats.TotalSizeBytes += len(text)
		storedFiles = append(storedFiles, file.Name)
	}

	a.storeFolderIndex(ctx, folder.Name, storedFiles)
}

// extractFile fetches and extracts one file, returning either content
// or a bracketed diagnostic.
func (a *Assembler) extractFile(ctx context.Context, file driven.File) string {
	var data []byte
	var err error

	if file.MIMEType == extract.MimeGoogleDoc {
		data, err = a.source.ExportText(ctx, file.ID)
	} else {
		data, err = a.source.Download(ctx, file.ID)
	}
	if err != nil {
		return fmt.Sprintf("[error loading %s: %v]", file.Name, err)
	}

	return extract.Text(file.MIMEType, file.Name, data)
}

// storeFolderIndex writes a diagnostic folder index record, best effort.
func (a *Assembler) storeFolderIndex(ctx context.Context, folderName string, files []string) {
	if a.kv == nil || len(files) == 0 {
		return
	}

	index := domain.FolderIndex{
		FolderName:  folderName,
		Files:       files,
		FileCount:   len(files),
		LastUpdated: time.Now().UTC(),
	}
	data, err := json.Marshal(index)
	if err != nil {
		return
	}

	key := a.cfg.KeyPrefix + "/" + sanitizeKeySegment(folderName) + "/_index"
	if err := a.kv.Set(ctx, key, data); err != nil {
		logger.Warn("Failed to store folder index %s: %v", folderName, err)
	}
}

// storeMasterIndex writes the run summary record, best effort.
func (a *Assembler) storeMasterIndex(ctx context.Context, stats *AssembleStats) {
	if a.kv == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := a.kv.Set(ctx, a.cfg.KeyPrefix+"/_master_index", data); err != nil {
		logger.Warn("Failed to store master index: %v", err)
	}
}

func writeSummaryFooter(buf *strings.Builder, stats *AssembleStats) {
	fmt.Fprintf(buf, "\n=== VAULT SUMMARY ===\n")
	fmt.Fprintf(buf, "Folders: %d\n", stats.FoldersProcessed)
	fmt.Fprintf(buf, "Files processed: %d\n", stats.FilesProcessed)
	fmt.Fprintf(buf, "Files stored: %d\n", stats.FilesStored)
	fmt.Fprintf(buf, "Total content: %d characters\n", stats.TotalSizeBytes)
}

// sanitizeKeySegment makes a folder or file name safe for use in a
// cache key.
func sanitizeKeySegment(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, " ", "_")
}

// newOperationID generates a prefixed identifier for admin and
// assembly operations.
func newOperationID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
