package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rajeev-kl/finkraft-t13/internal/domain"
	"github.com/rajeev-kl/finkraft-t13/internal/repo"
)

// ThreadService exposes read access to ingested threads and their triage
// state.
type ThreadService struct {
	DB *gorm.DB
}

// ThreadListItem is one row of the paginated thread listing.
type ThreadListItem struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Title     string    `json:"title"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Status    string    `json:"status"`
	Messages  int64     `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// ThreadPage is a page of threads plus the total row count.
type ThreadPage struct {
	Items []ThreadListItem `json:"items"`
	Total int64            `json:"total"`
}

// MessageView is a message with its current best suggestion, if any.
type MessageView struct {
	Message    domain.Message     `json:"message"`
	Suggestion *domain.Suggestion `json:"suggestion,omitempty"`
}

// ThreadDetail is one thread with its full message history.
type ThreadDetail struct {
	Thread   domain.Thread `json:"thread"`
	Title    string        `json:"title"`
	Messages []MessageView `json:"messages"`
}

// ListPage returns one page of threads, newest first. page is 1-based;
// perPage is clamped to [1, 100].
func (s *ThreadService) ListPage(ctx context.Context, page, perPage int) (*ThreadPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	total, err := repo.CountThreads(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	threads, err := repo.ListThreadsPage(ctx, s.DB, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}

	items := make([]ThreadListItem, 0, len(threads))
	for _, t := range threads {
		count, err := repo.CountMessages(ctx, s.DB, t.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, ThreadListItem{
			ID:        t.ID,
			Subject:   t.Subject,
			Title:     DisplayTitle(t.Subject),
			Sender:    t.Sender,
			Recipient: t.Recipient,
			Status:    t.Status,
			Messages:  count,
			CreatedAt: t.CreatedAt,
		})
	}
	return &ThreadPage{Items: items, Total: total}, nil
}

// Get returns a thread with all its messages, each paired with the latest
// suggestion. Returns ErrThreadNotFound when the thread does not exist.
func (s *ThreadService) Get(ctx context.Context, id string) (*ThreadDetail, error) {
	thread, err := repo.GetThread(ctx, s.DB, id)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}

	msgs, err := repo.ListMessagesForThread(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		sug, err := repo.LatestSuggestionForMessage(ctx, s.DB, m.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, MessageView{Message: m, Suggestion: sug})
	}
	return &ThreadDetail{Thread: *thread, Title: DisplayTitle(thread.Subject), Messages: views}, nil
}

// SuggestionHistory returns all suggestions recorded for a message, newest
// first. Returns ErrMessageNotFound when the message does not exist.
func (s *ThreadService) SuggestionHistory(ctx context.Context, messageID string) ([]domain.Suggestion, error) {
	if _, err := repo.GetMessage(ctx, s.DB, messageID); err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return repo.ListSuggestionsForMessage(ctx, s.DB, messageID)
}

// Stats reports the thread count and newest creation time, used for
// cache-validator headers on the listing endpoint.
func (s *ThreadService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.ThreadsStats(ctx, s.DB)
}
