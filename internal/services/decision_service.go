package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rajeev-kl/finkraft-t13/internal/ai"
	"github.com/rajeev-kl/finkraft-t13/internal/domain"
	"github.com/rajeev-kl/finkraft-t13/internal/repo"
)

// DecisionService records human verdicts on suggestions. Decisions are
// append-only; accepting settles the message, overriding replaces the
// suggested action with free text.
type DecisionService struct {
	DB      *gorm.DB
	Drafter ai.Drafter
}

// AcceptInput carries the payload of an accept request. Provided holds values
// for the suggestion's required customer fields; ResponderProvided holds
// internal operator inputs.
type AcceptInput struct {
	User              string
	Provided          map[string]string
	ResponderProvided map[string]string
	Note              string
}

// AcceptResult is the decision plus the auto-generated draft, if any.
type AcceptResult struct {
	Decision      *domain.Decision `json:"decision"`
	Draft         *domain.Draft    `json:"draft,omitempty"`
	MissingFields []string         `json:"missing_fields,omitempty"`
}

// Accept records an "accept" decision for a suggestion and auto-generates a
// reply draft from the accepted action. The accept is refused with
// ErrMissingFields when required customer field values are absent from
// in.Provided; the missing names are returned alongside the error. Accepting
// a close_thread action also closes the owning thread. Draft generation
// failure is logged and does not undo the decision.
func (s *DecisionService) Accept(ctx context.Context, suggestionID string, in AcceptInput) (*AcceptResult, error) {
	sug, err := repo.GetSuggestion(ctx, s.DB, suggestionID)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrSuggestionNotFound
		}
		return nil, err
	}

	payload := domain.DecodeFieldPayload(sug.RequiredFields)
	if missing := payload.MissingCustomer(in.Provided); len(missing) > 0 {
		return &AcceptResult{MissingFields: missing}, ErrMissingFields
	}

	dec, err := repo.CreateDecision(ctx, s.DB, sug.ID, in.User, domain.DecisionAccept, in.Note)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("suggestion_id", sug.ID).
		Str("user", in.User).
		Str("action", sug.SuggestedAction).
		Msg("suggestion accepted")

	res := &AcceptResult{Decision: dec}
	msg, err := repo.GetMessage(ctx, s.DB, sug.MessageID)
	if err != nil {
		log.Warn().Err(err).Str("suggestion_id", sug.ID).Msg("message lookup failed after accept")
		return res, nil
	}

	if sug.SuggestedAction == domain.ActionCloseThread {
		if err := repo.UpdateThreadStatus(ctx, s.DB, msg.ThreadID, domain.ThreadStatusClosed); err != nil {
			log.Warn().Err(err).Str("thread_id", msg.ThreadID).Msg("closing thread after accept failed")
		} else {
			log.Info().Str("thread_id", msg.ThreadID).Msg("thread closed")
		}
	}

	draft, err := s.draftForAccepted(ctx, sug, msg, in)
	if err != nil {
		// The decision stands; the operator can create the draft manually.
		log.Warn().Err(err).Str("suggestion_id", sug.ID).Msg("auto-draft generation failed after accept")
		return res, nil
	}
	res.Draft = draft
	return res, nil
}

// draftForAccepted returns the reply draft for a freshly accepted suggestion.
// An unsent draft already attached to the message is reused instead of
// generating a duplicate.
func (s *DecisionService) draftForAccepted(ctx context.Context, sug *domain.Suggestion, msg *domain.Message, in AcceptInput) (*domain.Draft, error) {
	if existing, err := repo.LatestUnsentDraftForMessage(ctx, s.DB, msg.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	body, err := s.Drafter.GenerateReply(ctx, sug.SuggestedAction, msg.Body, "")
	if err != nil || strings.TrimSpace(body) == "" {
		if err != nil {
			log.Warn().Err(err).Str("suggestion_id", sug.ID).Msg("reply generation failed, using fallback body")
		}
		body = fallbackDraftBody(sug.SuggestedAction)
	}

	return repo.CreateDraft(ctx, s.DB, repo.DraftParams{
		ThreadID:          msg.ThreadID,
		MessageID:         &msg.ID,
		SuggestionID:      &sug.ID,
		Body:              body,
		CustomerProvided:  in.Provided,
		ResponderProvided: in.ResponderProvided,
	})
}

// Override records an operator decision that replaces the suggested action
// with free text. The text is required; it is stored as "override:<text>".
func (s *DecisionService) Override(ctx context.Context, suggestionID, user, text, note string) (*domain.Decision, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyOverride
	}
	sug, err := repo.GetSuggestion(ctx, s.DB, suggestionID)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrSuggestionNotFound
		}
		return nil, err
	}

	dec, err := repo.CreateDecision(ctx, s.DB, sug.ID, user, "override:"+text, note)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("suggestion_id", sug.ID).
		Str("user", user).
		Str("override", text).
		Msg("suggestion overridden")
	return dec, nil
}

// fallbackDraftBody is the deterministic reply used when the drafter is
// unavailable or returned nothing.
func fallbackDraftBody(action string) string {
	return fmt.Sprintf("Hello,\n\nThank you for your message. We will proceed with the next step: %s.\n\nBest regards", action)
}
