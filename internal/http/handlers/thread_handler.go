// Thread HTTP handlers.
//
// This file exposes REST endpoints for email thread resources:
//   - POST   /threads/import          (bulk ingestion)
//   - GET    /threads                 (list, paginated, ETag support)
//   - GET    /threads/{id}            (detail with messages and suggestions)
//   - GET    /messages/{id}/suggestions (suggestion history)
//   - POST   /messages/{id}/reevaluate  (re-run the resolver)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rajeev-kl/finkraft-t13/internal/domain"
	"github.com/rajeev-kl/finkraft-t13/internal/services"
	"github.com/rajeev-kl/finkraft-t13/internal/utils"
)

// maxImportBytes caps the size of an import document read from the request.
const maxImportBytes = 8 << 20

//
// Service contracts (context-aware)
//

// IngestService performs bulk thread import.
type IngestService interface {
	IngestJSON(ctx context.Context, payload []byte) ([]services.ThreadSummary, error)
}

// ThreadService provides read access to threads and suggestion history.
type ThreadService interface {
	ListPage(ctx context.Context, page, perPage int) (*services.ThreadPage, error)
	Get(ctx context.Context, id string) (*services.ThreadDetail, error)
	SuggestionHistory(ctx context.Context, messageID string) ([]domain.Suggestion, error)
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// ResolverService re-runs suggestion resolution for a message.
type ResolverService interface {
	ResolveMessage(ctx context.Context, messageID string) (*domain.Suggestion, error)
}

// DecisionService records human verdicts on suggestions.
type DecisionService interface {
	Accept(ctx context.Context, suggestionID string, in services.AcceptInput) (*services.AcceptResult, error)
	Override(ctx context.Context, suggestionID, user, text, note string) (*domain.Decision, error)
}

// DraftService owns the reply draft lifecycle.
type DraftService interface {
	Create(ctx context.Context, threadID string, in services.CreateInput) (*domain.Draft, error)
	Get(ctx context.Context, id string) (*domain.Draft, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Draft, error)
	ListForThread(ctx context.Context, threadID string) ([]domain.Draft, error)
	LatestUnsentForMessage(ctx context.Context, messageID string) (*domain.Draft, error)
	UpdateBody(ctx context.Context, id, body string) (*domain.Draft, error)
	Send(ctx context.Context, id string) (*domain.Draft, error)
	Delete(ctx context.Context, id string) error
}

// RulesService exposes the intent→action mapping.
type RulesService interface {
	List(ctx context.Context) ([]services.RuleEntry, error)
	Set(ctx context.Context, intent, action string) (*domain.ActionRule, error)
}

// LogSource yields recent log lines for the diagnostics endpoint.
type LogSource interface {
	Recent() []string
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the triage API. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	ingestSvc   IngestService
	threadSvc   ThreadService
	resolverSvc ResolverService
	decisionSvc DecisionService
	draftSvc    DraftService
	rulesSvc    RulesService
	logs        LogSource
}

// New constructs a Handlers instance bound to the given services.
func New(ingest IngestService, threads ThreadService, resolver ResolverService,
	decisions DecisionService, drafts DraftService, rules RulesService, logs LogSource) *Handlers {
	return &Handlers{
		ingestSvc:   ingest,
		threadSvc:   threads,
		resolverSvc: resolver,
		decisionSvc: decisions,
		draftSvc:    drafts,
		rulesSvc:    rules,
		logs:        logs,
	}
}

//
// DTOs
//

// ImportResponse reports the per-thread outcomes of a bulk import.
type ImportResponse struct {
	Results []services.ThreadSummary `json:"results"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListThreadsResponse wraps a page of threads and pagination information.
type ListThreadsResponse struct {
	Threads    []services.ThreadListItem `json:"threads"`
	Pagination Pagination                `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// importPayload reads the import document from either a raw JSON body or a
// multipart upload (form field "file"). Both paths cap the read at
// maxImportBytes.
func importPayload(c *gin.Context) ([]byte, error) {
	if c.ContentType() == "multipart/form-data" {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxImportBytes))
	}
	return io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
}

// requireUUID validates a path parameter as a UUID, writing a 400 on failure.
func requireUUID(c *gin.Context, name, val string) bool {
	if _, err := uuid.Parse(val); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a UUID")
		return false
	}
	return true
}

//
// Handlers
//

// ImportThreads godoc
// @ID          importThreads
// @Summary     Import email threads
// @Description Bulk-ingests a JSON document: a bare array of threads or {"threads": [...]}, sent raw or as a multipart file upload (field "file"). Each thread may carry a messages array; without one the thread body is ingested as its single message. Import is idempotent; replays create no duplicate rows.
// @Tags        Threads
// @Accept      json
// @Accept      mpfd
// @Produce     json
//
// @Param       body  body  []services.ThreadSummary  true  "Import document"
//
// @Success     200  {object}  handlers.ImportResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed document"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /threads/import [post]
func (h *Handlers) ImportThreads(c *gin.Context) {
	payload, err := importPayload(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable request body")
		return
	}

	results, err := h.ingestSvc.IngestJSON(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, services.ErrMalformedInput) {
			fail(c, http.StatusBadRequest, ErrCodeMalformedImport, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "import failed")
		return
	}
	ok(c, http.StatusOK, ImportResponse{Results: results})
}

// ListThreads godoc
// @ID          listThreads
// @Summary     List threads (paginated)
// @Description Returns a page of threads, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Threads
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListThreadsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /threads [get]
func (h *Handlers) ListThreads(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.threadSvc.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"threads:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	pageRes, err := h.threadSvc.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "listing threads failed")
		return
	}

	totalPages := int((pageRes.Total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListThreadsResponse{
		Threads: pageRes.Items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      pageRes.Total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetThread godoc
// @ID          getThread
// @Summary     Get a thread
// @Description Returns one thread with its messages, each paired with the latest suggestion.
// @Tags        Threads
// @Produce     json
//
// @Param       id  path  string  true  "Thread ID (UUID)"  format(uuid)
//
// @Success     200  {object} services.ThreadDetail
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Thread not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /threads/{id} [get]
func (h *Handlers) GetThread(c *gin.Context) {
	id := c.Param("id")
	if !requireUUID(c, "thread id", id) {
		return
	}

	detail, err := h.threadSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrThreadNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "thread not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "loading thread failed")
		return
	}
	ok(c, http.StatusOK, detail)
}

// ListSuggestions godoc
// @ID          listSuggestions
// @Summary     Suggestion history for a message
// @Description Returns every suggestion recorded for a message, newest first.
// @Tags        Suggestions
// @Produce     json
//
// @Param       id  path  string  true  "Message ID (UUID)"  format(uuid)
//
// @Success     200  {array}  domain.Suggestion
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Message not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/{id}/suggestions [get]
func (h *Handlers) ListSuggestions(c *gin.Context) {
	id := c.Param("id")
	if !requireUUID(c, "message id", id) {
		return
	}

	history, err := h.threadSvc.SuggestionHistory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMessageNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "message not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "loading suggestions failed")
		return
	}
	ok(c, http.StatusOK, history)
}

// ReevaluateMessage godoc
// @ID          reevaluateMessage
// @Summary     Re-run suggestion resolution
// @Description Runs the resolver again for a message. Accepted messages and non-improving results yield 200 with no new suggestion.
// @Tags        Suggestions
// @Produce     json
//
// @Param       id  path  string  true  "Message ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Suggestion
// @Success     204  {string} string "No new suggestion"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Message not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/{id}/reevaluate [post]
func (h *Handlers) ReevaluateMessage(c *gin.Context) {
	id := c.Param("id")
	if !requireUUID(c, "message id", id) {
		return
	}

	sug, err := h.resolverSvc.ResolveMessage(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMessageNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "message not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "re-evaluation failed")
		return
	}
	if sug == nil {
		noContent(c)
		return
	}
	ok(c, http.StatusOK, sug)
}
