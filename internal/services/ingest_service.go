package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rajeev-kl/finkraft-t13/internal/repo"
)

// inboundMessage is the wire shape of one message inside an import thread.
type inboundMessage struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
}

// inboundThread is the wire shape of one thread in an import document. The
// messages array is optional; a thread without one is ingested as a single
// message carrying the thread's own body.
type inboundThread struct {
	Subject   string           `json:"subject"`
	Sender    string           `json:"sender"`
	Recipient string           `json:"recipient"`
	Body      string           `json:"body"`
	Messages  []inboundMessage `json:"messages"`
}

// MessageSummary reports the outcome of ingesting one message of a thread.
type MessageSummary struct {
	MessageID    string `json:"message_id,omitempty"`
	SuggestionID string `json:"suggestion_id,omitempty"`
	Created      bool   `json:"created"`
	Deduplicated bool   `json:"deduplicated"`
	Error        string `json:"error,omitempty"`
}

// ThreadSummary reports the outcome of ingesting one inbound thread. The
// top-level MessageID, SuggestionID, Created and Deduplicated fields mirror
// the thread's first message.
type ThreadSummary struct {
	ThreadID     string           `json:"thread_id,omitempty"`
	MessageID    string           `json:"message_id,omitempty"`
	SuggestionID string           `json:"suggestion_id,omitempty"`
	Subject      string           `json:"subject"`
	Created      bool             `json:"created"`
	Deduplicated bool             `json:"deduplicated"`
	Messages     []MessageSummary `json:"messages,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// IngestService performs bulk import of email threads. Import is idempotent:
// threads are keyed by (subject, sender, recipient) and messages are
// de-duplicated per thread by body, so replaying the same document creates
// no new rows.
type IngestService struct {
	DB       *gorm.DB
	Resolver *ResolverService
}

// IngestJSON ingests a JSON document holding either a bare array of thread
// objects or an object of the form {"threads": [...]}. Any other shape
// returns ErrMalformedInput with nothing processed. Failures on individual
// threads or messages are recorded in the corresponding summary and do not
// abort the rest of the batch.
func (s *IngestService) IngestJSON(ctx context.Context, payload []byte) ([]ThreadSummary, error) {
	threads, err := decodeImport(payload)
	if err != nil {
		return nil, err
	}

	summaries := make([]ThreadSummary, 0, len(threads))
	for i, in := range threads {
		summaries = append(summaries, s.ingestOne(ctx, i, in))
	}
	return summaries, nil
}

// ingestOne processes a single inbound thread and never returns an error;
// failures land in the summary so the batch can continue.
func (s *IngestService) ingestOne(ctx context.Context, idx int, in inboundThread) ThreadSummary {
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		subject = fmt.Sprintf("no-subject-%d", idx)
	}
	sum := ThreadSummary{Subject: subject}

	thread, created, err := repo.GetOrCreateThread(ctx, s.DB, subject, in.Sender, in.Recipient, in.Body)
	if err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("thread ingest failed, continuing batch")
		sum.Error = "thread persist failed"
		return sum
	}
	if created {
		threadsIngested.Inc()
	}
	sum.ThreadID = thread.ID

	// With no explicit messages array the thread body stands in as the
	// single message of the conversation.
	inbound := in.Messages
	if len(inbound) == 0 {
		inbound = []inboundMessage{{Sender: in.Sender, Recipient: in.Recipient, Body: in.Body}}
	}

	sum.Messages = make([]MessageSummary, 0, len(inbound))
	for _, m := range inbound {
		sum.Messages = append(sum.Messages, s.ingestMessage(ctx, thread.ID, m))
	}

	first := sum.Messages[0]
	sum.MessageID = first.MessageID
	sum.SuggestionID = first.SuggestionID
	sum.Created = first.Created
	sum.Deduplicated = first.Deduplicated
	if first.Error != "" {
		sum.Error = first.Error
	}
	return sum
}

// ingestMessage persists one message of a thread and resolves its suggestion.
// Like ingestOne it never returns an error; a failed message does not stop
// its siblings.
func (s *IngestService) ingestMessage(ctx context.Context, threadID string, m inboundMessage) MessageSummary {
	var sum MessageSummary

	// Per-thread message dedup: a body seen before is not re-ingested and
	// not re-evaluated.
	existing, err := repo.GetMessageByThreadAndBody(ctx, s.DB, threadID, m.Body)
	if err != nil && err != repo.ErrNotFound {
		log.Warn().Err(err).Str("thread_id", threadID).Msg("message lookup failed, continuing batch")
		sum.Error = "message lookup failed"
		return sum
	}
	if existing != nil {
		sum.MessageID = existing.ID
		sum.Deduplicated = true
		return sum
	}

	msg, err := repo.CreateMessage(ctx, s.DB, threadID, m.Sender, m.Recipient, m.Body)
	if err != nil {
		log.Warn().Err(err).Str("thread_id", threadID).Msg("message persist failed, continuing batch")
		sum.Error = "message persist failed"
		return sum
	}
	sum.MessageID = msg.ID
	sum.Created = true
	messagesIngested.Inc()

	sug, err := s.Resolver.Resolve(ctx, msg)
	if err != nil {
		// The message is durable; only the suggestion is lost.
		log.Warn().Err(err).Str("message_id", msg.ID).Msg("suggestion resolution failed, continuing batch")
		return sum
	}
	if sug != nil {
		sum.SuggestionID = sug.ID
	}
	return sum
}

// decodeImport accepts a bare JSON array or a {"threads": [...]} wrapper.
// JSON null decodes into a nil slice without error in both shapes; it is not
// an import document.
func decodeImport(payload []byte) ([]inboundThread, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return nil, ErrMalformedInput
	}

	var direct []inboundThread
	if err := json.Unmarshal([]byte(trimmed), &direct); err == nil && direct != nil {
		return direct, nil
	}

	var wrapped struct {
		Threads []inboundThread `json:"threads"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err == nil && wrapped.Threads != nil {
		return wrapped.Threads, nil
	}
	return nil, ErrMalformedInput
}
