package services

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
)

// CompressionThreshold is the serialized-payload size in bytes above
// which cache entries are gzip-compressed before storage.
const CompressionThreshold = 80_000

// EncodeEntry serialises a payload into its cached representation,
// compressing when the JSON form exceeds CompressionThreshold.
func EncodeEntry(payload *domain.VaultPayload) (*domain.CachedEntry, error) {
	if payload == nil {
		return nil, domain.ErrInvalidInput
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	if len(raw) <= CompressionThreshold {
		return &domain.CachedEntry{Data: string(raw)}, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}

	return &domain.CachedEntry{
		Compressed:     true,
		Data:           base64.StdEncoding.EncodeToString(buf.Bytes()),
		OriginalSize:   len(raw),
		CompressedSize: buf.Len(),
	}, nil
}

// DecodeEntry inverts exactly the operation EncodeEntry chose. Corrupt
// or malformed entries surface as ErrDecodeCorruption, never as a
// silent empty payload.
func DecodeEntry(entry *domain.CachedEntry) (*domain.VaultPayload, error) {
	if entry == nil {
		return nil, fmt.Errorf("%w: nil entry", domain.ErrDecodeCorruption)
	}

	raw := []byte(entry.Data)
	if entry.Compressed {
		compressed, err := base64.StdEncoding.DecodeString(entry.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: base64 decode: %v", domain.ErrDecodeCorruption, err)
		}

		zr, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("%w: gzip open: %v", domain.ErrDecodeCorruption, err)
		}
		raw, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip read: %v", domain.ErrDecodeCorruption, err)
		}
		if err := zr.Close(); err != nil {
			return nil, fmt.Errorf("%w: gzip close: %v", domain.ErrDecodeCorruption, err)
		}
	}

	var payload domain.VaultPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: unmarshal payload: %v", domain.ErrDecodeCorruption, err)
	}

	return &payload, nil
}
