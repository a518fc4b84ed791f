// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Thread
// model.
//
// All functions accept a *gorm.DB handle, making them safe for use within
// transactions or connection-scoped operations. They follow the "thin
// repository" approach: no business logic, only CRUD persistence and query
// composition.
//
// Error semantics:
//   - When a thread is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rajeev-kl/finkraft-t13/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateThread inserts a new Thread row. The thread ID is a randomly generated
// UUID (string), CreatedAt is set to UTC, and the status defaults to pending.
func CreateThread(ctx context.Context, db *gorm.DB, subject, sender, recipient, body string) (*domain.Thread, error) {
	t := &domain.Thread{
		ID:        uuid.NewString(),
		Subject:   subject,
		Sender:    sender,
		Recipient: recipient,
		Body:      body,
		Status:    domain.ThreadStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// GetThreadByKeys fetches the most recent thread matching the identity tuple
// (subject, sender, recipient), or ErrNotFound.
func GetThreadByKeys(ctx context.Context, db *gorm.DB, subject, sender, recipient string) (*domain.Thread, error) {
	var t domain.Thread
	err := db.WithContext(ctx).
		Where("subject = ? AND sender = ? AND recipient = ?", subject, sender, recipient).
		Order("created_at desc").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetOrCreateThread returns the existing thread for the identity tuple, or
// inserts a new one. This is the idempotent entry point used by ingestion;
// created reports whether a row was inserted.
func GetOrCreateThread(ctx context.Context, db *gorm.DB, subject, sender, recipient, body string) (t *domain.Thread, created bool, err error) {
	existing, err := GetThreadByKeys(ctx, db, subject, sender, recipient)
	if err == nil {
		return existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}
	t, err = CreateThread(ctx, db, subject, sender, recipient, body)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// GetThread fetches a single thread by ID, or ErrNotFound.
func GetThread(ctx context.Context, db *gorm.DB, id string) (*domain.Thread, error) {
	var t domain.Thread
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// CountThreads returns the total number of threads.
func CountThreads(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Thread{}).Count(&total).Error
	return total, err
}

// ListThreadsPage returns a paginated slice of threads ordered by creation
// time descending. The caller computes offset and limit.
func ListThreadsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Thread, error) {
	var out []domain.Thread
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateThreadStatus sets the status of a thread. Returns ErrNotFound when no
// row was affected.
func UpdateThreadStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Thread{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ThreadsStats returns aggregate metadata used for conditional responses
// (ETag generation): the total thread count and the greatest CreatedAt among
// them, nil when there are no rows.
func ThreadsStats(ctx context.Context, db *gorm.DB) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Thread{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
