// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Suggestion
// and Decision models.
//
// Suggestions are append-only history: the pipeline never updates or deletes
// a suggestion row, it only inserts a better one. "Latest" always means the
// greatest CreatedAt for the message.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rajeev-kl/finkraft-t13/internal/domain"
)

// SuggestionParams carries the resolver's outcome into persistence.
type SuggestionParams struct {
	MessageID        string
	Intent           string
	Confidence       float64
	SuggestedAction  string
	Provenance       string
	RequiredFields   domain.FieldPayload
	FollowUpQuestion string
	RawResponse      string
}

// CreateSuggestion inserts a suggestion row for a message. The required-fields
// payload is serialized to the JSON text blob on write.
func CreateSuggestion(ctx context.Context, db *gorm.DB, p SuggestionParams) (*domain.Suggestion, error) {
	s := &domain.Suggestion{
		ID:               uuid.NewString(),
		MessageID:        p.MessageID,
		Intent:           p.Intent,
		Confidence:       p.Confidence,
		SuggestedAction:  p.SuggestedAction,
		Provenance:       p.Provenance,
		RequiredFields:   domain.EncodeFieldPayload(p.RequiredFields),
		FollowUpQuestion: p.FollowUpQuestion,
		RawResponse:      p.RawResponse,
		CreatedAt:        time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// LatestSuggestionForMessage returns the newest suggestion for the message,
// or (nil, nil) when the message has none.
func LatestSuggestionForMessage(ctx context.Context, db *gorm.DB, messageID string) (*domain.Suggestion, error) {
	var s domain.Suggestion
	err := db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at desc").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSuggestionsForMessage returns the full suggestion history for a
// message, newest first.
func ListSuggestionsForMessage(ctx context.Context, db *gorm.DB, messageID string) ([]domain.Suggestion, error) {
	var out []domain.Suggestion
	err := db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// GetSuggestion fetches a suggestion by ID, or ErrNotFound.
func GetSuggestion(ctx context.Context, db *gorm.DB, id string) (*domain.Suggestion, error) {
	var s domain.Suggestion
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateDecision appends a human decision row for a suggestion.
func CreateDecision(ctx context.Context, db *gorm.DB, suggestionID, user, decision, note string) (*domain.Decision, error) {
	d := &domain.Decision{
		ID:           uuid.NewString(),
		SuggestionID: suggestionID,
		User:         user,
		Decision:     decision,
		Note:         note,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// ListDecisionsForSuggestion returns decisions for a suggestion, newest first.
func ListDecisionsForSuggestion(ctx context.Context, db *gorm.DB, suggestionID string) ([]domain.Decision, error) {
	var out []domain.Decision
	err := db.WithContext(ctx).
		Where("suggestion_id = ?", suggestionID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// HasAcceptedDecisionForSuggestion reports whether any "accept" decision
// exists for the suggestion.
func HasAcceptedDecisionForSuggestion(ctx context.Context, db *gorm.DB, suggestionID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Decision{}).
		Where("suggestion_id = ? AND decision = ?", suggestionID, domain.DecisionAccept).
		Count(&n).Error
	return n > 0, err
}

// HasAcceptedDecisionForMessage reports whether the message's latest
// suggestion carries an "accept" decision. A message with no suggestions is
// never accepted.
func HasAcceptedDecisionForMessage(ctx context.Context, db *gorm.DB, messageID string) (bool, error) {
	latest, err := LatestSuggestionForMessage(ctx, db, messageID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return false, nil
	}
	return HasAcceptedDecisionForSuggestion(ctx, db, latest.ID)
}
