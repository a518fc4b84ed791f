// Package rules implements the keyword fallback classifier and the
// intent→action tables used by the suggestion resolver. Everything here is
// pure: no I/O, no external calls, deterministic output for a given input.
package rules

import (
	"sort"
	"strings"
)

// Canonical intents produced by the keyword classifier.
const (
	IntentUnknown       = "unknown"
	IntentInterested    = "interested"
	IntentNotInterested = "not_interested"
	IntentEscalate      = "escalate"
)

// ActionNone is the placeholder action meaning "nothing suggested".
const ActionNone = "no-action"

// keywordGroup is one ordered band of signals with its verdict. Groups are
// checked in declaration order; the first matching group wins, so an
// "interested" keyword shadows a later "escalate" keyword in the same text.
type keywordGroup struct {
	keywords   []string
	intent     string
	confidence float64
	action     string
}

var keywordGroups = []keywordGroup{
	{
		keywords:   []string{"interested", "price", "pricing", "details", "need details", "can you share"},
		intent:     IntentInterested,
		confidence: 0.75,
		action:     "send_pricing",
	},
	{
		keywords:   []string{"not interested", "no thanks", "no thank", "don't need", "do not need"},
		intent:     IntentNotInterested,
		confidence: 0.80,
		action:     "close_thread",
	},
	{
		// "escalat" deliberately matches escalate/escalation/escalating.
		keywords:   []string{"manager", "supervisor", "escalat", "complain", "urgent"},
		intent:     IntentEscalate,
		confidence: 0.90,
		action:     "escalate_to_ops",
	},
}

// Classify runs the keyword fallback over text and returns the detected
// intent, a confidence estimate, and the suggested action. Matching is
// case-insensitive substring containment. Empty or whitespace-only text, and
// text matching no group, yield ("unknown", 0, "no-action").
func Classify(text string) (intent string, confidence float64, action string) {
	txt := strings.ToLower(strings.TrimSpace(text))
	if txt == "" {
		return IntentUnknown, 0, ActionNone
	}
	for _, g := range keywordGroups {
		for _, k := range g.keywords {
			if strings.Contains(txt, k) {
				return g.intent, g.confidence, g.action
			}
		}
	}
	return IntentUnknown, 0, ActionNone
}

// defaultActions maps recognized intents to their default next-step action.
// Intents absent from the table keep ActionNone.
var defaultActions = map[string]string{
	"interested":                           "send_pricing",
	"not_interested":                       "close_thread",
	"cancel_request":                       "start_cancellation_flow",
	"cancel_booking_and_request_refund":    "start_cancellation_flow",
	"escalation":                           "escalate_to_manager",
	"request_escalation_to_manager":        "escalate_to_manager",
	"request_group_availability_and_rates": "send_group_rates",
	"group_availability":                   "send_group_rates",
}

// DefaultAction returns the canonical action for a recognized intent, or
// ActionNone when the intent has no default mapping.
func DefaultAction(intent string) string {
	if a, ok := defaultActions[intent]; ok {
		return a
	}
	return ActionNone
}

// DefaultIntents returns the intents with a built-in default action, sorted.
func DefaultIntents() []string {
	out := make([]string, 0, len(defaultActions))
	for k := range defaultActions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Table is a small mutable set of operator-defined intent→action overrides.
// Lookups consult the overrides first and fall back to the built-in defaults.
// The zero value is usable. Table is not safe for concurrent mutation; wrap
// access at a higher layer if needed.
type Table struct {
	overrides map[string]string
}

// NewTable returns an empty override table.
func NewTable() *Table { return &Table{overrides: make(map[string]string)} }

// Set installs (or replaces) the action for intent. Blank intents or actions
// are ignored.
func (t *Table) Set(intent, action string) {
	intent = strings.TrimSpace(intent)
	action = strings.TrimSpace(action)
	if intent == "" || action == "" {
		return
	}
	if t.overrides == nil {
		t.overrides = make(map[string]string)
	}
	t.overrides[intent] = action
}

// Action resolves intent against the overrides, then the defaults.
func (t *Table) Action(intent string) string {
	if t.overrides != nil {
		if a, ok := t.overrides[intent]; ok {
			return a
		}
	}
	return DefaultAction(intent)
}

// List returns a copy of the current overrides.
func (t *Table) List() map[string]string {
	out := make(map[string]string, len(t.overrides))
	for k, v := range t.overrides {
		out[k] = v
	}
	return out
}
