package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Zero(t, EstimateTokens(""))
	assert.Zero(t, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 1000, EstimateTokens(strings.Repeat("x", 4000)))
}

func TestEstimateCostFormat(t *testing.T) {
	assert.Equal(t, "$0.0000", EstimateCost(0))
	assert.Equal(t, "$0.0020", EstimateCost(1000))
	assert.Equal(t, "$0.0001", EstimateCost(50))
}

func TestNewOperationalPayload(t *testing.T) {
	payload := NewOperationalPayload("12345678", []string{"00_EnforcementShell"}, 3)

	assert.Equal(t, StatusOperational, payload.Status)
	assert.Equal(t, 2, payload.TokenEstimate)
	assert.Equal(t, EstimateCost(2), payload.EstimatedCost)
	assert.Equal(t, 3, payload.TotalFiles)
}

func TestNewOperationalPayloadNilFolders(t *testing.T) {
	payload := NewOperationalPayload("content", nil, 0)
	assert.NotNil(t, payload.FoldersLoaded)
	assert.Empty(t, payload.FoldersLoaded)
}

func TestNewNeedsRefreshPayload(t *testing.T) {
	payload := NewNeedsRefreshPayload()

	assert.Equal(t, StatusNeedsRefresh, payload.Status)
	assert.Empty(t, payload.Content)
	assert.Zero(t, payload.TokenEstimate)
	assert.Equal(t, "$0.0000", payload.EstimatedCost)
	assert.NotNil(t, payload.FoldersLoaded)
}
