package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
)

func TestRespondRejectsEmptyMessage(t *testing.T) {
	svc := NewChatService(&fakeLLM{name: "claude", reply: "hi"}, nil)

	for _, message := range []string{"", "   ", "\n\t"} {
		_, err := svc.Respond(context.Background(), message, "vault")
		assert.ErrorIs(t, err, domain.ErrNoMessage)
		assert.EqualError(t, err, "No message provided")
	}
}

func TestRespondUsesPrimaryModel(t *testing.T) {
	primary := &fakeLLM{name: "claude", reply: "  validated against tier 2  "}
	secondary := &fakeLLM{name: "gpt", reply: "unused"}
	svc := NewChatService(primary, secondary)

	reply, err := svc.Respond(context.Background(), "Is my pricing viable?", "vault content")
	require.NoError(t, err)

	assert.Equal(t, "validated against tier 2", reply)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, secondary.calls)
}

func TestRespondInjectsVaultIntoSystemPrompt(t *testing.T) {
	primary := &fakeLLM{name: "claude", reply: "ok"}
	svc := NewChatService(primary, nil)

	_, err := svc.Respond(context.Background(), "question", "=== rules.txt ===\nvault body")
	require.NoError(t, err)

	require.Len(t, primary.lastMsg, 2)
	assert.Equal(t, "system", primary.lastMsg[0].Role)
	assert.Contains(t, primary.lastMsg[0].Content, "vault body")
	assert.Contains(t, primary.lastMsg[0].Content, "business validation assistant")
	assert.Equal(t, "user", primary.lastMsg[1].Role)
	assert.Equal(t, "question", primary.lastMsg[1].Content)
}

func TestRespondFallsBackToSecondary(t *testing.T) {
	primary := &fakeLLM{name: "claude", err: errors.New("overloaded")}
	secondary := &fakeLLM{name: "gpt", reply: "fallback answer"}
	svc := NewChatService(primary, secondary)

	reply, err := svc.Respond(context.Background(), "question", "vault")
	require.NoError(t, err)

	assert.Equal(t, "fallback answer", reply)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestRespondBothModelsFail(t *testing.T) {
	primary := &fakeLLM{name: "claude", err: errors.New("overloaded")}
	secondary := &fakeLLM{name: "gpt", err: errors.New("quota exceeded")}
	svc := NewChatService(primary, secondary)

	_, err := svc.Respond(context.Background(), "question", "vault")
	require.ErrorIs(t, err, domain.ErrUpstreamCompletion)
	assert.Contains(t, err.Error(), "claude")
	assert.Contains(t, err.Error(), "gpt")
	assert.Contains(t, err.Error(), "overloaded")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestRespondNoModelsConfigured(t *testing.T) {
	svc := NewChatService(nil, nil)

	_, err := svc.Respond(context.Background(), "question", "vault")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestRespondSecondaryOnly(t *testing.T) {
	secondary := &fakeLLM{name: "gpt", reply: "answer"}
	svc := NewChatService(nil, secondary)

	reply, err := svc.Respond(context.Background(), "question", "vault")
	require.NoError(t, err)
	assert.Equal(t, "answer", reply)
}

func TestBuildSystemPromptEmptyVault(t *testing.T) {
	prompt := BuildSystemPrompt("")
	assert.Equal(t, systemPreamble, prompt)

	withVault := BuildSystemPrompt("vault text")
	assert.Contains(t, withVault, systemPreamble)
	assert.Contains(t, withVault, "vault text")
}
