// Package services – ResolverService
//
// This file implements the suggestion resolver, the heart of the triage
// pipeline. Given a persisted message and the classifier's verdict, it
// reconciles the AI output with the keyword rule fallback, selects a
// suggested action, and decides whether the result is worth persisting:
// a new suggestion row is written only when it strictly improves on the
// message's history and the message has not already been human-resolved.
//
// Observability: Resolve is OpenTelemetry-instrumented; the span carries the
// message id and the final intent/provenance. Classification failures are
// logged and counted, never surfaced to callers.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rajeev-kl/finkraft-t13/internal/ai"
	"github.com/rajeev-kl/finkraft-t13/internal/domain"
	"github.com/rajeev-kl/finkraft-t13/internal/repo"
	"github.com/rajeev-kl/finkraft-t13/internal/rules"
)

// ruleFallbackGate is the classifier confidence below which the keyword
// fallback is consulted.
const ruleFallbackGate = 0.6

// ResolverService turns a raw message into a durable suggestion. It is
// invoked once per message during ingestion and again, idempotently, on
// manual re-evaluation requests.
type ResolverService struct {
	DB         *gorm.DB
	Classifier ai.Classifier
}

// ResolveMessage looks up a message by ID and resolves it. Returns
// ErrMessageNotFound when the message does not exist.
func (s *ResolverService) ResolveMessage(ctx context.Context, messageID string) (*domain.Suggestion, error) {
	msg, err := repo.GetMessage(ctx, s.DB, messageID)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return s.Resolve(ctx, msg)
}

// Resolve runs the resolution pipeline for one message. It returns the newly
// persisted suggestion, or (nil, nil) when nothing was written: either the
// message is already human-resolved, or the computed result did not beat the
// existing history.
//
// A non-nil error reports a persistence problem only; classifier failures
// degrade to the unknown/zero-confidence result internally.
func (s *ResolverService) Resolve(ctx context.Context, msg *domain.Message) (*domain.Suggestion, error) {
	tr := otel.Tracer("services/ResolverService")
	ctx, span := tr.Start(ctx, "Resolve",
		trace.WithAttributes(attribute.String("message.id", msg.ID)),
	)
	defer span.End()

	// 1) A human-accepted message is settled: never re-evaluate.
	accepted, err := repo.HasAcceptedDecisionForMessage(ctx, s.DB, msg.ID)
	if err != nil {
		return nil, err
	}
	if accepted {
		log.Debug().Str("message_id", msg.ID).Msg("skipping re-evaluation: suggestion already accepted")
		return nil, nil
	}

	// 2) Classify. Failures degrade to unknown/zero-confidence.
	result, cerr := s.Classifier.Classify(ctx, []ai.Turn{{Role: "user", Content: msg.Body}})
	if cerr != nil {
		classifierFailures.Inc()
		log.Warn().Err(cerr).Str("message_id", msg.ID).Msg("intent classification failed, using fallback")
		result = ai.UnknownResult()
	}

	intent := result.Intent
	confidence := result.Confidence
	provenance := domain.ProvenanceAI

	// 3a) An explicit, non-placeholder AI action is used verbatim. This
	// covers model intents that do not map cleanly onto the internal table.
	action := rules.ActionNone
	if a := strings.TrimSpace(result.SuggestedAction); a != "" && a != rules.ActionNone {
		action = a
	}

	if action == rules.ActionNone {
		if intent == rules.IntentUnknown || confidence < ruleFallbackGate {
			// 3b) Rule fallback, adopted only when it is more confident.
			rIntent, rConf, rAction := rules.Classify(msg.Body)
			if rConf > confidence {
				intent, confidence, action = rIntent, rConf, rAction
				provenance = domain.ProvenanceRule
			}
		} else {
			// 3c) Default-action table (operator overrides first).
			action = s.actionTable(ctx).Action(intent)
		}
	}

	span.SetAttributes(
		attribute.String("suggestion.intent", intent),
		attribute.String("suggestion.provenance", provenance),
		attribute.Float64("suggestion.confidence", confidence),
	)

	// 4) Persist only a strict improvement, and never a zero-confidence row.
	latest, err := repo.LatestSuggestionForMessage(ctx, s.DB, msg.ID)
	if err != nil {
		return nil, err
	}
	if confidence <= 0 || (latest != nil && confidence <= latest.Confidence) {
		suggestionsDiscarded.Inc()
		log.Debug().
			Str("message_id", msg.ID).
			Float64("confidence", confidence).
			Msg("discarding suggestion: no improvement over history")
		return nil, nil
	}

	sug, err := repo.CreateSuggestion(ctx, s.DB, repo.SuggestionParams{
		MessageID:        msg.ID,
		Intent:           intent,
		Confidence:       confidence,
		SuggestedAction:  action,
		Provenance:       provenance,
		RequiredFields:   result.Fields(),
		FollowUpQuestion: result.FollowUpQuestion,
		RawResponse:      result.Raw,
	})
	if err != nil {
		return nil, err
	}
	suggestionsPersisted.WithLabelValues(provenance).Inc()
	log.Info().
		Str("message_id", msg.ID).
		Str("intent", intent).
		Float64("confidence", confidence).
		Str("action", action).
		Str("provenance", provenance).
		Msg("suggestion persisted")
	return sug, nil
}

// actionTable builds the intent→action table with operator overrides layered
// over the built-in defaults. A load failure falls back to the defaults only.
func (s *ResolverService) actionTable(ctx context.Context) *rules.Table {
	t := rules.NewTable()
	overrides, err := repo.ListActionRules(ctx, s.DB)
	if err != nil {
		log.Warn().Err(err).Msg("loading action rule overrides failed, using defaults")
		return t
	}
	for _, r := range overrides {
		t.Set(r.Intent, r.Action)
	}
	return t
}
