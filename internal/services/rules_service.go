package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/rajeev-kl/finkraft-t13/internal/domain"
	"github.com/rajeev-kl/finkraft-t13/internal/repo"
	"github.com/rajeev-kl/finkraft-t13/internal/rules"
)

// RulesService exposes the intent→action mapping: the built-in defaults plus
// operator overrides stored in action_rules.
type RulesService struct {
	DB *gorm.DB
}

// RuleEntry is one intent→action mapping with its origin.
type RuleEntry struct {
	Intent   string `json:"intent"`
	Action   string `json:"action"`
	Override bool   `json:"override"`
}

// List returns the effective mapping: every stored override, plus each
// built-in default not shadowed by one.
func (s *RulesService) List(ctx context.Context) ([]RuleEntry, error) {
	stored, err := repo.ListActionRules(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(stored))
	out := make([]RuleEntry, 0, len(stored)+8)
	for _, r := range stored {
		seen[r.Intent] = struct{}{}
		out = append(out, RuleEntry{Intent: r.Intent, Action: r.Action, Override: true})
	}
	for _, intent := range rules.DefaultIntents() {
		if _, ok := seen[intent]; ok {
			continue
		}
		out = append(out, RuleEntry{Intent: intent, Action: rules.DefaultAction(intent)})
	}
	return out, nil
}

// Set installs or replaces the action override for an intent. Blank values
// are rejected with ErrMalformedInput.
func (s *RulesService) Set(ctx context.Context, intent, action string) (*domain.ActionRule, error) {
	intent = strings.TrimSpace(intent)
	action = strings.TrimSpace(action)
	if intent == "" || action == "" {
		return nil, ErrMalformedInput
	}
	return repo.UpsertActionRule(ctx, s.DB, intent, action)
}
