package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rajeev-kl/finkraft-t13/internal/ai"
	"github.com/rajeev-kl/finkraft-t13/internal/domain"
	"github.com/rajeev-kl/finkraft-t13/internal/repo"
)

// DraftService owns the reply draft lifecycle: creation (manual or generated),
// editing, listing, a single draft→sent transition, and deletion of unsent
// drafts.
type DraftService struct {
	DB      *gorm.DB
	Drafter ai.Drafter
}

// CreateInput carries a manual draft request. When Body is empty a
// SuggestionID is required; the body is then generated from the suggestion's
// action and the original message.
type CreateInput struct {
	MessageID    *string
	SuggestionID *string
	Body         string
	Tone         string
}

// Create adds a draft to a thread. Returns ErrThreadNotFound for an unknown
// thread and ErrEmptyDraft when there is neither a body nor a suggestion to
// generate one from.
func (s *DraftService) Create(ctx context.Context, threadID string, in CreateInput) (*domain.Draft, error) {
	if _, err := repo.GetThread(ctx, s.DB, threadID); err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}

	body := strings.TrimSpace(in.Body)
	if body == "" {
		if in.SuggestionID == nil {
			return nil, ErrEmptyDraft
		}
		generated, err := s.generateFromSuggestion(ctx, *in.SuggestionID, in.Tone)
		if err != nil {
			return nil, err
		}
		body = generated
	}

	d, err := repo.CreateDraft(ctx, s.DB, repo.DraftParams{
		ThreadID:     threadID,
		MessageID:    in.MessageID,
		SuggestionID: in.SuggestionID,
		Body:         body,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("draft_id", d.ID).Str("thread_id", threadID).Msg("draft created")
	return d, nil
}

// generateFromSuggestion produces a reply body for the suggestion's action.
// An empty tone falls through to the drafter's default. Drafter failure
// degrades to the deterministic fallback body.
func (s *DraftService) generateFromSuggestion(ctx context.Context, suggestionID, tone string) (string, error) {
	sug, err := repo.GetSuggestion(ctx, s.DB, suggestionID)
	if err != nil {
		if err == repo.ErrNotFound {
			return "", ErrSuggestionNotFound
		}
		return "", err
	}
	msg, err := repo.GetMessage(ctx, s.DB, sug.MessageID)
	if err != nil {
		return "", err
	}
	body, gerr := s.Drafter.GenerateReply(ctx, sug.SuggestedAction, msg.Body, tone)
	if gerr != nil || strings.TrimSpace(body) == "" {
		if gerr != nil {
			log.Warn().Err(gerr).Str("suggestion_id", sug.ID).Msg("reply generation failed, using fallback body")
		}
		body = fallbackDraftBody(sug.SuggestedAction)
	}
	return body, nil
}

// Get fetches one draft. Returns ErrDraftNotFound when absent.
func (s *DraftService) Get(ctx context.Context, id string) (*domain.Draft, error) {
	d, err := repo.GetDraft(ctx, s.DB, id)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListByStatus returns drafts filtered by status ("draft" or "sent"); an
// empty status defaults to "draft".
func (s *DraftService) ListByStatus(ctx context.Context, status string) ([]domain.Draft, error) {
	if status == "" {
		status = domain.DraftStatusDraft
	}
	if status != domain.DraftStatusDraft && status != domain.DraftStatusSent {
		return nil, ErrMalformedInput
	}
	return repo.ListDraftsByStatus(ctx, s.DB, status)
}

// LatestUnsentForMessage returns the newest unsent draft attached to a
// message. Returns ErrDraftNotFound when the message has no unsent draft.
func (s *DraftService) LatestUnsentForMessage(ctx context.Context, messageID string) (*domain.Draft, error) {
	if _, err := repo.GetMessage(ctx, s.DB, messageID); err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	d, err := repo.LatestUnsentDraftForMessage(ctx, s.DB, messageID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// ListForThread returns every draft attached to a thread, newest first.
func (s *DraftService) ListForThread(ctx context.Context, threadID string) ([]domain.Draft, error) {
	if _, err := repo.GetThread(ctx, s.DB, threadID); err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return repo.ListDraftsForThread(ctx, s.DB, threadID)
}

// UpdateBody replaces the body of an unsent draft. Editing a sent draft
// returns ErrAlreadySent.
func (s *DraftService) UpdateBody(ctx context.Context, id, body string) (*domain.Draft, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyDraft
	}
	err := repo.UpdateDraftBody(ctx, s.DB, id, body)
	if err == repo.ErrNotFound {
		return nil, s.notFoundOrSent(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Send transitions a draft to "sent" exactly once and stamps SentAt. A second
// send returns ErrAlreadySent with the stored state unchanged.
func (s *DraftService) Send(ctx context.Context, id string) (*domain.Draft, error) {
	rows, err := repo.MarkDraftSent(ctx, s.DB, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.notFoundOrSent(ctx, id)
	}
	draftsSent.Inc()
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Info().Str("draft_id", id).Str("thread_id", d.ThreadID).Msg("draft sent")
	return d, nil
}

// Delete removes an unsent draft. Sent drafts are immutable history and
// cannot be deleted.
func (s *DraftService) Delete(ctx context.Context, id string) error {
	err := repo.DeleteDraft(ctx, s.DB, id)
	if err == repo.ErrNotFound {
		return s.notFoundOrSent(ctx, id)
	}
	return err
}

// notFoundOrSent disambiguates a zero-row guard result: the draft either does
// not exist or has already been sent.
func (s *DraftService) notFoundOrSent(ctx context.Context, id string) error {
	d, err := repo.GetDraft(ctx, s.DB, id)
	if err != nil {
		if err == repo.ErrNotFound {
			return ErrDraftNotFound
		}
		return err
	}
	if d.Status == domain.DraftStatusSent {
		return ErrAlreadySent
	}
	return ErrDraftNotFound
}
