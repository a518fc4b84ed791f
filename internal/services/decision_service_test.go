package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/rajeev-kl/finkraft-t13/internal/ai"
	"github.com/rajeev-kl/finkraft-t13/internal/domain"
	"github.com/rajeev-kl/finkraft-t13/internal/repo"
)

// seedSuggestion creates a thread/message/suggestion chain for decision tests.
func seedSuggestion(t *testing.T, db *gorm.DB, fields domain.FieldPayload) *domain.Suggestion {
	t.Helper()
	ctx := context.Background()
	th, err := repo.CreateThread(ctx, db, "Booking", "a@x", "b@y", "")
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	msg, err := repo.CreateMessage(ctx, db, th.ID, "a@x", "b@y", "Can you share pricing?")
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	sug, err := repo.CreateSuggestion(ctx, db, repo.SuggestionParams{
		MessageID: msg.ID, Intent: "interested", Confidence: 0.8,
		SuggestedAction: "send_pricing", Provenance: domain.ProvenanceAI,
		RequiredFields: fields,
	})
	if err != nil {
		t.Fatalf("suggestion: %v", err)
	}
	return sug
}

func TestAccept_GeneratesDraft(t *testing.T) {
	db := newTestDB(t)
	md := &ai.MockDrafter{Reply: "Here is our pricing."}
	svc := &DecisionService{DB: db, Drafter: md}

	sug := seedSuggestion(t, db, domain.FieldPayload{})

	res, err := svc.Accept(context.Background(), sug.ID, AcceptInput{User: "ops", Note: "looks right"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if res.Decision == nil || res.Decision.Decision != domain.DecisionAccept || res.Decision.User != "ops" {
		t.Fatalf("decision = %+v", res.Decision)
	}
	if res.Draft == nil || res.Draft.Body != "Here is our pricing." {
		t.Fatalf("draft = %+v", res.Draft)
	}
	if res.Draft.SuggestionID == nil || *res.Draft.SuggestionID != sug.ID {
		t.Fatalf("draft not linked to suggestion: %+v", res.Draft)
	}
	if md.LastAction != "send_pricing" {
		t.Fatalf("drafter called with action %q", md.LastAction)
	}
	// The tone is left to the drafter's own default.
	if md.LastTone != "" {
		t.Fatalf("drafter called with tone %q; want empty", md.LastTone)
	}
}

func TestAccept_ReusesExistingUnsentDraft(t *testing.T) {
	db := newTestDB(t)
	md := &ai.MockDrafter{Reply: "generated"}
	svc := &DecisionService{DB: db, Drafter: md}
	ctx := context.Background()

	sug := seedSuggestion(t, db, domain.FieldPayload{})
	msg, err := repo.GetMessage(ctx, db, sug.MessageID)
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	existing, err := repo.CreateDraft(ctx, db, repo.DraftParams{
		ThreadID:  msg.ThreadID,
		MessageID: &msg.ID,
		Body:      "half-written reply",
	})
	if err != nil {
		t.Fatalf("draft: %v", err)
	}

	res, err := svc.Accept(ctx, sug.ID, AcceptInput{User: "ops"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if res.Draft == nil || res.Draft.ID != existing.ID || res.Draft.Body != "half-written reply" {
		t.Fatalf("accept should reuse the unsent draft: %+v", res.Draft)
	}
	if md.Calls != 0 {
		t.Fatalf("drafter called %d times; want 0", md.Calls)
	}
	drafts, _ := repo.ListDraftsForThread(ctx, db, msg.ThreadID)
	if len(drafts) != 1 {
		t.Fatalf("draft count = %d; want 1", len(drafts))
	}
}

func TestAccept_CloseThreadActionClosesThread(t *testing.T) {
	db := newTestDB(t)
	svc := &DecisionService{DB: db, Drafter: &ai.MockDrafter{}}
	ctx := context.Background()

	th, err := repo.CreateThread(ctx, db, "Unsubscribe", "a@x", "b@y", "")
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	msg, err := repo.CreateMessage(ctx, db, th.ID, "a@x", "b@y", "We are not interested, thanks.")
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	sug, err := repo.CreateSuggestion(ctx, db, repo.SuggestionParams{
		MessageID: msg.ID, Intent: "not_interested", Confidence: 0.8,
		SuggestedAction: domain.ActionCloseThread, Provenance: domain.ProvenanceRule,
	})
	if err != nil {
		t.Fatalf("suggestion: %v", err)
	}

	if _, err := svc.Accept(ctx, sug.ID, AcceptInput{User: "ops"}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	got, err := repo.GetThread(ctx, db, th.ID)
	if err != nil {
		t.Fatalf("thread after accept: %v", err)
	}
	if got.Status != domain.ThreadStatusClosed {
		t.Fatalf("thread status = %q; want closed", got.Status)
	}
}

func TestAccept_MissingRequiredFields(t *testing.T) {
	db := newTestDB(t)
	svc := &DecisionService{DB: db, Drafter: &ai.MockDrafter{}}

	sug := seedSuggestion(t, db, domain.FieldPayload{Customer: []domain.FieldSpec{
		{Name: "dates", Required: true},
		{Name: "guests", Required: true},
	}})

	res, err := svc.Accept(context.Background(), sug.ID, AcceptInput{
		User:     "ops",
		Provided: map[string]string{"dates": "june"},
	})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v; want ErrMissingFields", err)
	}
	if res == nil || len(res.MissingFields) != 1 || res.MissingFields[0] != "guests" {
		t.Fatalf("missing fields = %+v", res)
	}

	// No decision row was written.
	decs, _ := repo.ListDecisionsForSuggestion(context.Background(), db, sug.ID)
	if len(decs) != 0 {
		t.Fatalf("decision written despite missing fields: %+v", decs)
	}
}

func TestAccept_ProvidedFieldsSatisfyGate(t *testing.T) {
	db := newTestDB(t)
	svc := &DecisionService{DB: db, Drafter: &ai.MockDrafter{}}

	sug := seedSuggestion(t, db, domain.FieldPayload{Customer: []domain.FieldSpec{
		{Name: "dates", Required: true},
	}})

	res, err := svc.Accept(context.Background(), sug.ID, AcceptInput{
		User:     "ops",
		Provided: map[string]string{"dates": "june 10-12"},
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if res.Draft == nil || res.Draft.CustomerProvided == "" {
		t.Fatalf("provided values not stored on draft: %+v", res.Draft)
	}
}

func TestAccept_DrafterDownUsesFallbackBody(t *testing.T) {
	db := newTestDB(t)
	svc := &DecisionService{DB: db, Drafter: ai.Disabled{}}

	sug := seedSuggestion(t, db, domain.FieldPayload{})

	res, err := svc.Accept(context.Background(), sug.ID, AcceptInput{User: "ops"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if res.Decision == nil {
		t.Fatalf("decision missing")
	}
	if res.Draft == nil || !strings.Contains(res.Draft.Body, "send_pricing") {
		t.Fatalf("fallback draft = %+v", res.Draft)
	}
}

func TestAccept_UnknownSuggestion(t *testing.T) {
	db := newTestDB(t)
	svc := &DecisionService{DB: db, Drafter: &ai.MockDrafter{}}

	if _, err := svc.Accept(context.Background(), "missing-id", AcceptInput{User: "ops"}); !errors.Is(err, ErrSuggestionNotFound) {
		t.Fatalf("err = %v; want ErrSuggestionNotFound", err)
	}
}

func TestOverride(t *testing.T) {
	db := newTestDB(t)
	svc := &DecisionService{DB: db, Drafter: &ai.MockDrafter{}}
	sug := seedSuggestion(t, db, domain.FieldPayload{})

	dec, err := svc.Override(context.Background(), sug.ID, "ops", "forward to billing", "wrong queue")
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if dec.Decision != "override:forward to billing" || dec.Note != "wrong queue" {
		t.Fatalf("decision = %+v", dec)
	}
}

func TestOverride_EmptyText(t *testing.T) {
	db := newTestDB(t)
	svc := &DecisionService{DB: db, Drafter: &ai.MockDrafter{}}
	sug := seedSuggestion(t, db, domain.FieldPayload{})

	if _, err := svc.Override(context.Background(), sug.ID, "ops", "   ", ""); !errors.Is(err, ErrEmptyOverride) {
		t.Fatalf("err = %v; want ErrEmptyOverride", err)
	}
}

func TestOverride_UnknownSuggestion(t *testing.T) {
	db := newTestDB(t)
	svc := &DecisionService{DB: db, Drafter: &ai.MockDrafter{}}

	if _, err := svc.Override(context.Background(), "missing-id", "ops", "do X", ""); !errors.Is(err, ErrSuggestionNotFound) {
		t.Fatalf("err = %v; want ErrSuggestionNotFound", err)
	}
}

func TestAccept_SettlesMessageForResolver(t *testing.T) {
	db := newTestDB(t)
	dsvc := &DecisionService{DB: db, Drafter: &ai.MockDrafter{}}
	sug := seedSuggestion(t, db, domain.FieldPayload{})

	if _, err := dsvc.Accept(context.Background(), sug.ID, AcceptInput{User: "ops"}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	mc := &ai.MockClassifier{Result: ai.IntentResult{Intent: "interested", Confidence: 0.99}}
	rsvc := &ResolverService{DB: db, Classifier: mc}
	got, err := rsvc.ResolveMessage(context.Background(), sug.MessageID)
	if err != nil || got != nil {
		t.Fatalf("resolver should skip an accepted message: %+v, %v", got, err)
	}
}
