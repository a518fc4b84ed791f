// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rajeev-kl/finkraft-t13/internal/domain"
)

// CreateMessage inserts a new message row under a thread.
func CreateMessage(ctx context.Context, db *gorm.DB, threadID, sender, recipient, body string) (*domain.Message, error) {
	m := &domain.Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Sender:    sender,
		Recipient: recipient,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// GetMessageByThreadAndBody fetches the most recent message in threadID with
// the exact body, or ErrNotFound. This is the dedup lookup used by ingestion.
func GetMessageByThreadAndBody(ctx context.Context, db *gorm.DB, threadID, body string) (*domain.Message, error) {
	var m domain.Message
	err := db.WithContext(ctx).
		Where("thread_id = ? AND body = ?", threadID, body).
		Order("created_at desc").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMessage fetches a message by ID, or ErrNotFound.
func GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error) {
	var m domain.Message
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessagesForThread returns messages ordered deterministically
// (CreatedAt ASC, ID ASC).
func ListMessagesForThread(ctx context.Context, db *gorm.DB, threadID string) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(ctx context.Context, db *gorm.DB, threadID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM email_messages WHERE thread_id = ?", threadID).
		Scan(&total).Error
	return total, err
}
