package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
)

func TestEncodeEntrySmallPayloadStaysUncompressed(t *testing.T) {
	payload := domain.NewOperationalPayload("short vault content", []string{"00_EnforcementShell"}, 1)

	entry, err := EncodeEntry(payload)
	require.NoError(t, err)

	assert.False(t, entry.Compressed)
	assert.Contains(t, entry.Data, "short vault content")

	decoded, err := DecodeEntry(entry)
	require.NoError(t, err)
	assert.Equal(t, payload.Content, decoded.Content)
	assert.Equal(t, payload.TokenEstimate, decoded.TokenEstimate)
	assert.Equal(t, payload.FoldersLoaded, decoded.FoldersLoaded)
}

func TestEncodeEntryLargePayloadCompresses(t *testing.T) {
	content := strings.Repeat("SiteMonkeys pricing tier validation rules. ", 2500)
	require.Greater(t, len(content), CompressionThreshold)
	payload := domain.NewOperationalPayload(content, []string{"01_Core_Directives"}, 3)

	entry, err := EncodeEntry(payload)
	require.NoError(t, err)

	assert.True(t, entry.Compressed)
	assert.Greater(t, entry.OriginalSize, CompressionThreshold)
	assert.Less(t, entry.CompressedSize, entry.OriginalSize)
	assert.NotContains(t, entry.Data, "pricing tier")

	decoded, err := DecodeEntry(entry)
	require.NoError(t, err)
	assert.Equal(t, content, decoded.Content)
	assert.Equal(t, payload.TokenEstimate, decoded.TokenEstimate)
}

// payloadWithSerializedSize pads content until the payload's JSON
// serialization is exactly target bytes long. The derived fields
// (tokens, cost) shift with content length, so sizing is iterative.
func payloadWithSerializedSize(t *testing.T, target int) *domain.VaultPayload {
	t.Helper()

	pad := target / 2
	for i := 0; i < 10; i++ {
		payload := domain.NewOperationalPayload(strings.Repeat("a", pad), []string{"00_EnforcementShell"}, 1)
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		if len(raw) == target {
			return payload
		}
		pad += target - len(raw)
	}
	t.Fatalf("could not build a payload serializing to %d bytes", target)
	return nil
}

func TestEncodeEntryAtThresholdStaysUncompressed(t *testing.T) {
	payload := payloadWithSerializedSize(t, CompressionThreshold)

	entry, err := EncodeEntry(payload)
	require.NoError(t, err)
	assert.False(t, entry.Compressed)

	decoded, err := DecodeEntry(entry)
	require.NoError(t, err)
	assert.Equal(t, payload.Content, decoded.Content)
}

func TestEncodeEntryOneByteOverThresholdCompresses(t *testing.T) {
	payload := payloadWithSerializedSize(t, CompressionThreshold+1)

	entry, err := EncodeEntry(payload)
	require.NoError(t, err)
	assert.True(t, entry.Compressed)
	assert.Equal(t, CompressionThreshold+1, entry.OriginalSize)

	decoded, err := DecodeEntry(entry)
	require.NoError(t, err)
	assert.Equal(t, payload.Content, decoded.Content)
}

func TestEncodeEntryNilPayload(t *testing.T) {
	_, err := EncodeEntry(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDecodeEntryCorruptBase64(t *testing.T) {
	entry := &domain.CachedEntry{Compressed: true, Data: "not valid base64!!!"}

	_, err := DecodeEntry(entry)
	assert.ErrorIs(t, err, domain.ErrDecodeCorruption)
}

func TestDecodeEntryCorruptGzip(t *testing.T) {
	// Valid base64, but the bytes are not a gzip stream.
	entry := &domain.CachedEntry{Compressed: true, Data: "bm90IGd6aXAgZGF0YQ=="}

	_, err := DecodeEntry(entry)
	assert.ErrorIs(t, err, domain.ErrDecodeCorruption)
}

func TestDecodeEntryCorruptJSON(t *testing.T) {
	entry := &domain.CachedEntry{Data: "{not json"}

	_, err := DecodeEntry(entry)
	assert.ErrorIs(t, err, domain.ErrDecodeCorruption)
}

func TestDecodeEntryNil(t *testing.T) {
	_, err := DecodeEntry(nil)
	assert.ErrorIs(t, err, domain.ErrDecodeCorruption)
}
