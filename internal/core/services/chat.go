package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/ports/driven"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/logger"
)

// Completion parameters carried over from the hosted deployment.
const (
	chatMaxTokens   = 4000
	chatTemperature = 0.2
)

// systemPreamble is the fixed behavioural contract prepended to the
// vault content in every system prompt.
const systemPreamble = `You are the SiteMonkeys business validation assistant. Answer strictly from the business intelligence vault below. Apply the zero-failure protocols: validate against the stated financial constraints and pricing tiers, cite the relevant vault section when making a recommendation, and refuse to give generic business advice that ignores the vault. If the vault does not cover a question, say so explicitly.`

// ChatService injects vault context into completion requests. It tries
// the primary model first and falls back to the secondary on failure.
type ChatService struct {
	primary   driven.LLMService
	secondary driven.LLMService
}

// NewChatService creates a chat service. Either service may be nil;
// at least one must be configured for Respond to succeed.
func NewChatService(primary, secondary driven.LLMService) *ChatService {
	return &ChatService{primary: primary, secondary: secondary}
}

// BuildSystemPrompt combines the behavioural preamble with the current
// vault content.
func BuildSystemPrompt(vaultContent string) string {
	if vaultContent == "" {
		return systemPreamble
	}
	return systemPreamble + "\n\n" + vaultContent
}

// Respond validates the user message, builds the model-facing prompt,
// and returns the completion. The user message passes through
// unmodified.
func (s *ChatService) Respond(ctx context.Context, message, vaultContent string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", domain.ErrNoMessage
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: BuildSystemPrompt(vaultContent)},
		{Role: "user", Content: message},
	}
	opts := driven.ChatOptions{
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	}

	if s.primary == nil && s.secondary == nil {
		return "", domain.ErrLLMUnavailable
	}

	if s.primary != nil {
		reply, err := s.primary.Chat(ctx, messages, opts)
		if err == nil {
			return strings.TrimSpace(reply), nil
		}
		if s.secondary == nil {
			return "", fmt.Errorf("%w: %s: %v", domain.ErrUpstreamCompletion, s.primary.ModelName(), err)
		}

		logger.Warn("Primary model %s failed, falling back to %s: %v",
			s.primary.ModelName(), s.secondary.ModelName(), err)
		reply, fbErr := s.secondary.Chat(ctx, messages, opts)
		if fbErr != nil {
			return "", fmt.Errorf("%w: %s: %v; %s: %v",
				domain.ErrUpstreamCompletion, s.primary.ModelName(), err, s.secondary.ModelName(), fbErr)
		}
		return strings.TrimSpace(reply), nil
	}

	reply, err := s.secondary.Chat(ctx, messages, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrUpstreamCompletion, s.secondary.ModelName(), err)
	}
	return strings.TrimSpace(reply), nil
}
