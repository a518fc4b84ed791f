// Package services defines the business logic of the triage pipeline:
// ingestion, suggestion resolution, human decisions, and draft lifecycle.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrMalformedInput is returned when a bulk ingestion document is
	// neither a JSON array of threads nor an object with a "threads" list.
	// Nothing is processed in that case.
	ErrMalformedInput = errors.New("ingestion input must be a JSON array or {\"threads\": [...]}")

	// ErrThreadNotFound indicates that the requested thread does not exist.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrMessageNotFound indicates that the requested message does not exist.
	ErrMessageNotFound = errors.New("message not found")

	// ErrSuggestionNotFound indicates that the requested suggestion does not
	// exist.
	ErrSuggestionNotFound = errors.New("suggestion not found")

	// ErrDraftNotFound indicates that the requested draft does not exist.
	ErrDraftNotFound = errors.New("draft not found")

	// ErrMissingFields is returned when accepting a suggestion without
	// supplying all required customer-facing field values.
	ErrMissingFields = errors.New("required fields missing")

	// ErrEmptyOverride is returned when an override decision carries no text.
	ErrEmptyOverride = errors.New("override text is empty")

	// ErrAlreadySent is returned when sending, editing, or deleting a draft
	// that has already transitioned to "sent". The first send wins; SentAt
	// never changes afterwards.
	ErrAlreadySent = errors.New("draft already sent")

	// ErrEmptyDraft is returned when a manual draft request has no body and
	// no suggestion to generate one from.
	ErrEmptyDraft = errors.New("draft body is empty and no suggestion is linked")
)
