package domain

import (
	"fmt"
	"time"
)

// VaultStatus describes the health of a vault payload.
type VaultStatus string

const (
	// StatusOperational indicates the payload carries real vault content.
	StatusOperational VaultStatus = "OPERATIONAL"
	// StatusFallback indicates the static fallback payload is being served
	// because the document source was unreachable during a refresh.
	StatusFallback VaultStatus = "FALLBACK"
	// StatusNeedsRefresh indicates the cache holds no usable payload and a
	// refresh has not been triggered.
	StatusNeedsRefresh VaultStatus = "NEEDS_REFRESH"
	// StatusError indicates an unrecoverable failure.
	StatusError VaultStatus = "ERROR"
)

// Token and cost heuristics carried over from the hosted deployment.
const (
	// TokenDivisor is the rough characters-per-token estimate.
	TokenDivisor = 4
	// CostPerThousandTokens is the informational per-1000-token rate in USD.
	CostPerThousandTokens = 0.002
)

// VaultPayload is the unit of cached business context injected into chat
// prompts. Content is non-empty whenever Status is OPERATIONAL.
type VaultPayload struct {
	Content       string      `json:"vault_content"`
	TokenEstimate int         `json:"tokens"`
	EstimatedCost string      `json:"estimated_cost"`
	FoldersLoaded []string    `json:"folders_loaded"`
	TotalFiles    int         `json:"total_files"`
	Status        VaultStatus `json:"status"`
}

// EstimateTokens estimates the token count of vault content.
func EstimateTokens(content string) int {
	return len(content) / TokenDivisor
}

// EstimateCost renders an informational cost estimate for a token count.
func EstimateCost(tokens int) string {
	return fmt.Sprintf("$%.4f", float64(tokens)*CostPerThousandTokens/1000)
}

// NewOperationalPayload builds an OPERATIONAL payload from assembled content.
func NewOperationalPayload(content string, foldersLoaded []string, totalFiles int) *VaultPayload {
	tokens := EstimateTokens(content)
	if foldersLoaded == nil {
		foldersLoaded = []string{}
	}
	return &VaultPayload{
		Content:       content,
		TokenEstimate: tokens,
		EstimatedCost: EstimateCost(tokens),
		FoldersLoaded: foldersLoaded,
		TotalFiles:    totalFiles,
		Status:        StatusOperational,
	}
}

// NewNeedsRefreshPayload builds the empty payload served on cache misses.
func NewNeedsRefreshPayload() *VaultPayload {
	return &VaultPayload{
		EstimatedCost: EstimateCost(0),
		FoldersLoaded: []string{},
		Status:        StatusNeedsRefresh,
	}
}

// CachedEntry is the on-cache representation of a VaultPayload. Data holds
// either the raw JSON-encoded payload or a base64-encoded gzip stream,
// depending on Compressed.
type CachedEntry struct {
	Compressed     bool   `json:"compressed"`
	Data           string `json:"data"`
	OriginalSize   int    `json:"original_size,omitempty"`
	CompressedSize int    `json:"compressed_size,omitempty"`
}

// FolderIndex is a diagnostic record listing the files stored for one
// source folder. It is not required for chat correctness.
type FolderIndex struct {
	FolderName  string    `json:"folder_name"`
	Files       []string  `json:"files"`
	FileCount   int       `json:"file_count"`
	LastUpdated time.Time `json:"last_updated"`
}
