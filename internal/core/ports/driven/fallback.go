package driven

import "github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"

// FallbackStore supplies the static vault payload served when the
// document source is unreachable during a refresh. The returned payload
// always carries StatusFallback and is never written to the cache.
type FallbackStore interface {
	Payload() *domain.VaultPayload
}
