// Package domain defines the persistence models for email threads, messages,
// AI suggestions, human decisions, and reply drafts. These types are mapped
// with GORM and form the core data layer of the triage application.
package domain

import "time"

// Thread statuses.
const (
	ThreadStatusPending = "pending"
	ThreadStatusClosed  = "closed"
)

// Draft statuses.
const (
	DraftStatusDraft = "draft"
	DraftStatusSent  = "sent"
)

// Suggestion provenance values: which subsystem produced the persisted
// suggestion.
const (
	ProvenanceAI   = "ai"
	ProvenanceRule = "rule"
)

// DecisionAccept is the decision value recorded when a human accepts a
// suggestion. Overrides are stored as "override:<free text>".
const DecisionAccept = "accept"

// ActionCloseThread is the suggested action whose acceptance closes the
// owning thread.
const ActionCloseThread = "close_thread"

// Thread represents one email conversation. Threads are identified for
// idempotent re-ingestion by the (subject, sender, recipient) tuple and are
// never deleted by the pipeline.
type Thread struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Subject   string    `json:"subject"    gorm:"type:varchar(255);not null;index:idx_thread_keys,priority:1"`
	Sender    string    `json:"sender"     gorm:"type:varchar(255);not null;index:idx_thread_keys,priority:2"`
	Recipient string    `json:"recipient"  gorm:"type:varchar(255);not null;index:idx_thread_keys,priority:3"`
	Body      string    `json:"body"       gorm:"type:text"`
	Status    string    `json:"status"     gorm:"type:varchar(16);not null;default:'pending'"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for Thread.
func (Thread) TableName() string { return "email_threads" }

// Message is a single email inside a thread. Messages are deduplicated on
// ingest by (thread_id, body) and are immutable once created.
type Message struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	ThreadID  string    `json:"thread_id"  gorm:"type:char(36);not null;index:idx_thread_msgs,priority:1"`
	Sender    string    `json:"sender"     gorm:"type:varchar(255)"`
	Recipient string    `json:"recipient"  gorm:"type:varchar(255)"`
	Body      string    `json:"body"       gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_thread_msgs,priority:2"`

	// Thread is the parent conversation. Messages are cascade-deleted if
	// their thread is removed.
	Thread Thread `json:"-" gorm:"foreignKey:ThreadID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "email_messages" }

// Suggestion is one triage proposal for a message: the classified intent, the
// reported confidence, and the next-step action. A message accumulates a
// history of suggestions; the latest (by CreatedAt) is authoritative. Rows are
// immutable once created.
//
// RequiredFields holds a serialized FieldPayload: the customer- and
// responder-facing inputs that must be collected before a draft can be
// generated for an accepted suggestion. RawResponse keeps the provider's
// original reply for audit.
type Suggestion struct {
	ID               string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	MessageID        string    `json:"message_id"         gorm:"type:char(36);not null;index:idx_msg_suggestions,priority:1"`
	Intent           string    `json:"intent"             gorm:"type:varchar(64);not null"`
	Confidence       float64   `json:"confidence"         gorm:"not null"`
	SuggestedAction  string    `json:"suggested_action"   gorm:"type:varchar(64);not null;default:'no-action'"`
	Provenance       string    `json:"provenance"         gorm:"type:varchar(16);not null;default:'ai'"`
	RequiredFields   string    `json:"-"                  gorm:"type:text"`
	FollowUpQuestion string    `json:"follow_up_question,omitempty" gorm:"type:text"`
	RawResponse      string    `json:"-"                  gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"         gorm:"index:idx_msg_suggestions,priority:2"`

	// Message is the classified email. Suggestions are cascade-deleted if
	// the underlying message is removed.
	Message Message `json:"-" gorm:"foreignKey:MessageID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Suggestion.
func (Suggestion) TableName() string { return "ai_suggestions" }

// Decision records a human verdict on a suggestion. Decisions are append-only;
// a message counts as human-resolved once its latest suggestion has a decision
// with value "accept".
type Decision struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	SuggestionID string    `json:"suggestion_id" gorm:"type:char(36);not null;index"`
	User         string    `json:"user"          gorm:"type:varchar(64);not null"`
	Decision     string    `json:"decision"      gorm:"type:varchar(255);not null"`
	Note         string    `json:"note,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`

	Suggestion Suggestion `json:"-" gorm:"foreignKey:SuggestionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Decision.
func (Decision) TableName() string { return "user_decisions" }

// Draft is a reply body prepared for a thread, optionally tied to the message
// and suggestion it answers. CustomerProvided / ResponderProvided hold the
// JSON-serialized field values collected when the draft was generated.
//
// Status moves draft -> sent exactly once; SentAt is set on that transition
// and never changes afterwards.
type Draft struct {
	ID                string     `json:"id"            gorm:"type:char(36);primaryKey"`
	ThreadID          string     `json:"thread_id"     gorm:"type:char(36);not null;index"`
	MessageID         *string    `json:"message_id,omitempty"    gorm:"type:char(36);index"`
	SuggestionID      *string    `json:"suggestion_id,omitempty" gorm:"type:char(36)"`
	Body              string     `json:"body"          gorm:"type:text;not null"`
	Status            string     `json:"status"        gorm:"type:varchar(16);not null;default:'draft';check:status IN ('draft','sent')"`
	CustomerProvided  string     `json:"-"             gorm:"type:text"`
	ResponderProvided string     `json:"-"             gorm:"type:text"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	SentAt            *time.Time `json:"sent_at,omitempty"`

	Thread Thread `json:"-" gorm:"foreignKey:ThreadID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Draft.
func (Draft) TableName() string { return "email_drafts" }

// ActionRule is an operator-defined intent→action mapping that supplements the
// built-in default table. The intent is the natural key.
type ActionRule struct {
	Intent    string    `json:"intent"     gorm:"type:varchar(64);primaryKey"`
	Action    string    `json:"action"     gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ActionRule.
func (ActionRule) TableName() string { return "action_rules" }
