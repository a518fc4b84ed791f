// Package handlers defines the HTTP-layer error codes used across all API
// endpoints. Codes are lowercase snake_case and stable; clients branch on
// them for programmatic error handling. Generic codes mirror common HTTP
// status semantics; domain-specific codes cover business errors that a status
// alone cannot convey.
package handlers

const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeConflict    = "conflict"
	ErrCodeRateLimited = "too_many_requests"
	ErrCodeInternal    = "internal_error"

	// Domain-specific:
	ErrCodeMalformedImport  = "malformed_import"
	ErrCodeMissingFields    = "missing_fields"
	ErrCodeEmptyOverride    = "empty_override"
	ErrCodeAlreadySent      = "already_sent"
	ErrCodeEmptyDraft       = "empty_draft"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
