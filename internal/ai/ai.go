// Package ai integrates the LLM completion provider (any OpenAI-compatible
// endpoint, via langchaingo) for intent classification and reply drafting.
//
// The provider is treated as unreliable: responses arrive in several
// shapes (see normalize.go) and calls can fail outright. Callers higher up the
// pipeline convert any error into the safe default result, so nothing in this
// package needs to guarantee success, only honest errors.
package ai

import (
	"context"
	"errors"

	"github.com/rajeev-kl/finkraft-t13/internal/domain"
)

// ErrUnavailable is returned when no classifier/drafter is configured
// (e.g. the API key is absent in a dev environment).
var ErrUnavailable = errors.New("llm provider unavailable")

// DefaultSystemPrompt is the instruction prepended to every classification
// request unless the caller supplies an override. It demands a single JSON
// object so the tolerant parser has something to anchor on.
const DefaultSystemPrompt = "You are an email assistant that MUST output a single JSON object (no extra text) describing the user's intent. " +
	"Return the keys: intent (string), confidence (0-1 float), suggested_action (one of: send_pricing, ask_for_details, close_thread, escalate_to_ops, no-action), " +
	"required_fields_customer (array of objects with keys: name (short id), hint (short human hint), required (boolean)), " +
	"required_fields_responder (array of objects with keys: name, hint, required): these are fields the responder/agent should fill (internal notes). " +
	"follow_up_question (string): a concise question to ask if more info is needed from the customer. " +
	"Be conservative with confidence. Only include required fields that are actually missing and relevant. Return valid JSON only."

// Turn is one (role, content) element of the conversation sent for
// classification. Role is "system", "user", or "assistant".
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IntentResult is the canonical classification outcome after normalization.
// Confidence is passed through from the provider unmodified. Raw retains the
// provider's original content for audit storage.
type IntentResult struct {
	Intent                  string
	Confidence              float64
	SuggestedAction         string
	RequiredFieldsCustomer  []domain.FieldSpec
	RequiredFieldsResponder []domain.FieldSpec
	FollowUpQuestion        string
	Raw                     string
}

// Fields bundles the result's required fields into the payload shape stored
// on a Suggestion.
func (r IntentResult) Fields() domain.FieldPayload {
	return domain.FieldPayload{
		Customer:  r.RequiredFieldsCustomer,
		Responder: r.RequiredFieldsResponder,
	}
}

// UnknownResult is the safe default used whenever classification fails.
func UnknownResult() IntentResult {
	return IntentResult{Intent: "unknown", Confidence: 0}
}

// Classifier produces an IntentResult for an ordered conversation.
// Implementations must honor ctx; errors are converted to the safe default by
// the resolver, never surfaced to end users.
type Classifier interface {
	Classify(ctx context.Context, turns []Turn) (IntentResult, error)
}

// Drafter writes a reply body accomplishing a suggested action in a given
// tone. An empty tone means "professional".
type Drafter interface {
	GenerateReply(ctx context.Context, action, original, tone string) (string, error)
}

// Disabled is the no-provider implementation wired when the LLM endpoint is
// not configured. Every call fails with ErrUnavailable, which the pipeline
// degrades to the rule fallback / empty draft.
type Disabled struct{}

// Classify always reports the provider as unavailable.
func (Disabled) Classify(context.Context, []Turn) (IntentResult, error) {
	return UnknownResult(), ErrUnavailable
}

// GenerateReply always reports the provider as unavailable.
func (Disabled) GenerateReply(context.Context, string, string, string) (string, error) {
	return "", ErrUnavailable
}
