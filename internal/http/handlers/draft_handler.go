// Draft HTTP handlers.
//
//   - GET    /drafts?status=draft|sent (list)
//   - POST   /threads/{id}/drafts      (create, manual or generated)
//   - GET    /threads/{id}/drafts      (list for a thread)
//   - GET    /messages/{id}/draft      (latest unsent for a message)
//   - PUT    /drafts/{id}              (edit body)
//   - POST   /drafts/{id}/send         (send exactly once)
//   - DELETE /drafts/{id}              (delete unsent)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajeev-kl/finkraft-t13/internal/services"
)

// CreateDraftRequest is the JSON payload for creating a draft. When Body is
// empty, SuggestionID is required and the body is generated from the
// suggestion's action.
type CreateDraftRequest struct {
	MessageID    *string `json:"message_id,omitempty"`
	SuggestionID *string `json:"suggestion_id,omitempty"`
	Body         string  `json:"body"`
	Tone         string  `json:"tone" example:"polite"`
}

// UpdateDraftRequest is the JSON payload for editing a draft body.
type UpdateDraftRequest struct {
	Body string `json:"body" binding:"required"`
}

// ListDrafts godoc
// @ID          listDrafts
// @Summary     List drafts by status
// @Description Returns drafts in the given status; defaults to "draft". Sent drafts order by send time.
// @Tags        Drafts
// @Produce     json
//
// @Param       status  query  string  false  "draft or sent"  Enums(draft, sent)  default(draft)
//
// @Success     200  {array}  domain.Draft
// @Failure     400  {object} handlers.ErrorResponse "Unknown status"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /drafts [get]
func (h *Handlers) ListDrafts(c *gin.Context) {
	drafts, err := h.draftSvc.ListByStatus(c.Request.Context(), c.Query("status"))
	if err != nil {
		if errors.Is(err, services.ErrMalformedInput) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be draft or sent")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "listing drafts failed")
		return
	}
	ok(c, http.StatusOK, drafts)
}

// CreateDraft godoc
// @ID          createDraft
// @Summary     Create a draft for a thread
// @Description Adds a reply draft. An empty body requires a suggestion_id; the body is then generated from the suggestion's action.
// @Tags        Drafts
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                       true  "Thread ID (UUID)"  format(uuid)
// @Param       body  body  handlers.CreateDraftRequest  true  "Draft payload"
//
// @Success     201  {object} domain.Draft
// @Failure     400  {object} handlers.ErrorResponse "Bad request or empty draft"
// @Failure     404  {object} handlers.ErrorResponse "Thread or suggestion not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /threads/{id}/drafts [post]
func (h *Handlers) CreateDraft(c *gin.Context) {
	threadID := c.Param("id")
	if !requireUUID(c, "thread id", threadID) {
		return
	}

	var req CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	d, err := h.draftSvc.Create(c.Request.Context(), threadID, services.CreateInput{
		MessageID:    req.MessageID,
		SuggestionID: req.SuggestionID,
		Body:         req.Body,
		Tone:         req.Tone,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrThreadNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "thread not found")
		case errors.Is(err, services.ErrSuggestionNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "suggestion not found")
		case errors.Is(err, services.ErrEmptyDraft):
			fail(c, http.StatusBadRequest, ErrCodeEmptyDraft, "draft body or suggestion_id required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "creating draft failed")
		}
		return
	}
	ok(c, http.StatusCreated, d)
}

// ListThreadDrafts godoc
// @ID          listThreadDrafts
// @Summary     List drafts of a thread
// @Tags        Drafts
// @Produce     json
//
// @Param       id  path  string  true  "Thread ID (UUID)"  format(uuid)
//
// @Success     200  {array}  domain.Draft
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Thread not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /threads/{id}/drafts [get]
func (h *Handlers) ListThreadDrafts(c *gin.Context) {
	threadID := c.Param("id")
	if !requireUUID(c, "thread id", threadID) {
		return
	}

	drafts, err := h.draftSvc.ListForThread(c.Request.Context(), threadID)
	if err != nil {
		if errors.Is(err, services.ErrThreadNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "thread not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "listing drafts failed")
		return
	}
	ok(c, http.StatusOK, drafts)
}

// GetMessageDraft godoc
// @ID          getMessageDraft
// @Summary     Latest unsent draft for a message
// @Description Returns the newest draft still in "draft" status for the message, the one an editor session would resume.
// @Tags        Drafts
// @Produce     json
//
// @Param       id  path  string  true  "Message ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Draft
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Message or draft not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/{id}/draft [get]
func (h *Handlers) GetMessageDraft(c *gin.Context) {
	id := c.Param("id")
	if !requireUUID(c, "message id", id) {
		return
	}

	d, err := h.draftSvc.LatestUnsentForMessage(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMessageNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "message not found")
			return
		}
		h.draftError(c, err, "loading draft failed")
		return
	}
	ok(c, http.StatusOK, d)
}

// UpdateDraft godoc
// @ID          updateDraft
// @Summary     Edit a draft body
// @Description Replaces the body of an unsent draft. Sent drafts are immutable.
// @Tags        Drafts
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                       true  "Draft ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateDraftRequest  true  "New body"
//
// @Success     200  {object} domain.Draft
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Draft not found"
// @Failure     409  {object} handlers.ErrorResponse "Draft already sent"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /drafts/{id} [put]
func (h *Handlers) UpdateDraft(c *gin.Context) {
	id := c.Param("id")
	if !requireUUID(c, "draft id", id) {
		return
	}

	var req UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body required")
		return
	}

	d, err := h.draftSvc.UpdateBody(c.Request.Context(), id, req.Body)
	if err != nil {
		h.draftError(c, err, "updating draft failed")
		return
	}
	ok(c, http.StatusOK, d)
}

// SendDraft godoc
// @ID          sendDraft
// @Summary     Send a draft
// @Description Transitions a draft to "sent" exactly once. A second send returns 409 with the stored state unchanged.
// @Tags        Drafts
// @Produce     json
//
// @Param       id  path  string  true  "Draft ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Draft
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Draft not found"
// @Failure     409  {object} handlers.ErrorResponse "Draft already sent"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /drafts/{id}/send [post]
func (h *Handlers) SendDraft(c *gin.Context) {
	id := c.Param("id")
	if !requireUUID(c, "draft id", id) {
		return
	}

	d, err := h.draftSvc.Send(c.Request.Context(), id)
	if err != nil {
		h.draftError(c, err, "sending draft failed")
		return
	}
	ok(c, http.StatusOK, d)
}

// DeleteDraft godoc
// @ID          deleteDraft
// @Summary     Delete an unsent draft
// @Tags        Drafts
// @Produce     json
//
// @Param       id  path  string  true  "Draft ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Draft not found"
// @Failure     409  {object} handlers.ErrorResponse "Draft already sent"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /drafts/{id} [delete]
func (h *Handlers) DeleteDraft(c *gin.Context) {
	id := c.Param("id")
	if !requireUUID(c, "draft id", id) {
		return
	}

	if err := h.draftSvc.Delete(c.Request.Context(), id); err != nil {
		h.draftError(c, err, "deleting draft failed")
		return
	}
	noContent(c)
}

// draftError maps draft lifecycle sentinels to HTTP responses.
func (h *Handlers) draftError(c *gin.Context, err error, internalMsg string) {
	switch {
	case errors.Is(err, services.ErrDraftNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "draft not found")
	case errors.Is(err, services.ErrAlreadySent):
		fail(c, http.StatusConflict, ErrCodeAlreadySent, "draft already sent")
	case errors.Is(err, services.ErrEmptyDraft):
		fail(c, http.StatusBadRequest, ErrCodeEmptyDraft, "draft body required")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, internalMsg)
	}
}
