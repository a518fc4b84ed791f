// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Draft model.
package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rajeev-kl/finkraft-t13/internal/domain"
)

// DraftParams carries the inputs for a new draft row. MessageID and
// SuggestionID are optional links back to what the draft answers.
type DraftParams struct {
	ThreadID          string
	MessageID         *string
	SuggestionID      *string
	Body              string
	CustomerProvided  map[string]string
	ResponderProvided map[string]string
}

// CreateDraft inserts a draft row in status "draft". Provided-field maps are
// serialized to JSON text blobs on write.
func CreateDraft(ctx context.Context, db *gorm.DB, p DraftParams) (*domain.Draft, error) {
	now := time.Now().UTC()
	d := &domain.Draft{
		ID:                uuid.NewString(),
		ThreadID:          p.ThreadID,
		MessageID:         p.MessageID,
		SuggestionID:      p.SuggestionID,
		Body:              p.Body,
		Status:            domain.DraftStatusDraft,
		CustomerProvided:  encodeProvided(p.CustomerProvided),
		ResponderProvided: encodeProvided(p.ResponderProvided),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// GetDraft fetches a draft by ID, or ErrNotFound.
func GetDraft(ctx context.Context, db *gorm.DB, id string) (*domain.Draft, error) {
	var d domain.Draft
	if err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDraftsByStatus returns drafts in the given status. Unsent drafts order
// by creation time descending; sent drafts by send time descending.
func ListDraftsByStatus(ctx context.Context, db *gorm.DB, status string) ([]domain.Draft, error) {
	var out []domain.Draft
	q := db.WithContext(ctx).Where("status = ?", status)
	if status == domain.DraftStatusSent {
		q = q.Order("sent_at desc")
	} else {
		q = q.Order("created_at desc")
	}
	err := q.Find(&out).Error
	return out, err
}

// ListDraftsForThread returns all drafts of a thread, newest first.
func ListDraftsForThread(ctx context.Context, db *gorm.DB, threadID string) ([]domain.Draft, error) {
	var out []domain.Draft
	err := db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// LatestUnsentDraftForMessage returns the newest draft still in status
// "draft" for the message, or (nil, nil) when there is none.
func LatestUnsentDraftForMessage(ctx context.Context, db *gorm.DB, messageID string) (*domain.Draft, error) {
	var d domain.Draft
	err := db.WithContext(ctx).
		Where("message_id = ? AND status = ?", messageID, domain.DraftStatusDraft).
		Order("created_at desc").
		First(&d).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDraftBody replaces the body of an unsent draft. Returns ErrNotFound
// when the draft does not exist or is already sent.
func UpdateDraftBody(ctx context.Context, db *gorm.DB, id, body string) error {
	res := db.WithContext(ctx).
		Model(&domain.Draft{}).
		Where("id = ? AND status = ?", id, domain.DraftStatusDraft).
		Updates(map[string]any{"body": body, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkDraftSent transitions a draft to "sent" with the given timestamp. The
// conditional WHERE guards the draft→sent transition: a draft already sent is
// left untouched and reported via zero rows affected.
func MarkDraftSent(ctx context.Context, db *gorm.DB, id string, sentAt time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Draft{}).
		Where("id = ? AND status = ?", id, domain.DraftStatusDraft).
		Updates(map[string]any{
			"status":     domain.DraftStatusSent,
			"sent_at":    sentAt,
			"updated_at": sentAt,
		})
	return res.RowsAffected, res.Error
}

// DeleteDraft removes an unsent draft. Returns ErrNotFound when the draft is
// missing or already sent (sent drafts are immutable history).
func DeleteDraft(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.DraftStatusDraft).
		Delete(&domain.Draft{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func encodeProvided(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}
