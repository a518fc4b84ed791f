package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Config holds provider settings for the LLM client. BaseURL may point at the
// real OpenAI API or any compatible endpoint (Azure gateway, local server).
type Config struct {
	BaseURL      string
	APIKey       string
	Model        string
	SystemPrompt string // optional override for DefaultSystemPrompt
}

// LLM implements Classifier and Drafter over a langchaingo OpenAI-compatible
// model. Calls are blocking round-trips with no retry; any retry policy is
// the HTTP client's concern.
type LLM struct {
	model        llms.Model
	systemPrompt string
}

// NewLLM constructs the provider client. Returns an error when the client
// cannot be built (bad options), not when the endpoint is unreachable;
// connectivity problems surface per call.
func NewLLM(cfg Config) (*LLM, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		// langchaingo requires a token even for keyless local endpoints.
		apiKey = "placeholder"
	}
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	sp := cfg.SystemPrompt
	if sp == "" {
		sp = DefaultSystemPrompt
	}
	return &LLM{model: model, systemPrompt: sp}, nil
}

// Classify sends the conversation (system prompt first) to the model and
// normalizes whatever comes back. The system prompt demands JSON output;
// Normalize tolerates prose-wrapped responses. The error is informational for
// the resolver's fallback path; no result other than the safe default
// accompanies a non-nil error.
func (l *LLM) Classify(ctx context.Context, turns []Turn) (IntentResult, error) {
	msgs := make([]llms.MessageContent, 0, len(turns)+1)
	msgs = append(msgs, llms.TextParts(schema.ChatMessageTypeSystem, l.systemPrompt))
	for _, t := range turns {
		msgs = append(msgs, llms.TextParts(messageType(t.Role), t.Content))
	}

	resp, err := l.model.GenerateContent(ctx, msgs)
	if err != nil {
		return UnknownResult(), fmt.Errorf("intent completion: %w", err)
	}
	content := firstChoice(resp)
	if content == "" {
		return UnknownResult(), ErrUnparseable
	}
	res, err := Normalize(content)
	if err != nil {
		log.Warn().Str("content", truncateForLog(content)).Msg("unparseable classifier response")
		return UnknownResult(), err
	}
	return res, nil
}

// GenerateReply builds the single drafting prompt and returns the raw text
// content of the model's reply.
func (l *LLM) GenerateReply(ctx context.Context, action, original, tone string) (string, error) {
	if tone == "" {
		tone = "professional"
	}
	prompt := fmt.Sprintf(
		"You are an assistant that writes a concise, clear email reply. The suggested action is: '%s'.\n"+
			"The original user message is:\n'''%s'''\n"+
			"Write a reply in a %s tone that accomplishes the suggested action. Return only the email body text.",
		action, original, tone)

	msgs := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, "You are a helpful assistant."),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}
	resp, err := l.model.GenerateContent(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("draft completion: %w", err)
	}
	return strings.TrimSpace(firstChoice(resp)), nil
}

// firstChoice extracts the text content of the first choice, tolerating empty
// choice lists from partial provider failures.
func firstChoice(resp *llms.ContentResponse) string {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return ""
	}
	return resp.Choices[0].Content
}

func messageType(role string) schema.ChatMessageType {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "system":
		return schema.ChatMessageTypeSystem
	case "assistant", "ai":
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}

func truncateForLog(s string) string {
	const max = 512
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
