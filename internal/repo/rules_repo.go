// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ActionRule
// override table.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rajeev-kl/finkraft-t13/internal/domain"
)

// UpsertActionRule installs or replaces the action mapped to an intent.
func UpsertActionRule(ctx context.Context, db *gorm.DB, intent, action string) (*domain.ActionRule, error) {
	now := time.Now().UTC()
	r := &domain.ActionRule{Intent: intent, Action: action, CreatedAt: now, UpdatedAt: now}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "intent"}},
			DoUpdates: clause.Assignments(map[string]any{"action": action, "updated_at": now}),
		}).
		Create(r).Error
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListActionRules returns all operator-defined overrides ordered by intent.
func ListActionRules(ctx context.Context, db *gorm.DB) ([]domain.ActionRule, error) {
	var out []domain.ActionRule
	err := db.WithContext(ctx).Order("intent asc").Find(&out).Error
	return out, err
}
