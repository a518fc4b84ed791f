// Suggestion decision HTTP handlers.
//
//   - POST /suggestions/{id}/accept   (accept, auto-generates a draft)
//   - POST /suggestions/{id}/override (replace the action with free text)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rajeev-kl/finkraft-t13/internal/services"
)

// AcceptRequest is the JSON payload for accepting a suggestion.
type AcceptRequest struct {
	// User identifies who accepted; defaults to "ops" when empty.
	User string `json:"user" example:"alex"`
	// Provided maps required customer field names to collected values.
	Provided map[string]string `json:"provided"`
	// ResponderProvided maps internal responder field names to values.
	ResponderProvided map[string]string `json:"responder_provided"`
	Note              string            `json:"note"`
}

// OverrideRequest is the JSON payload for overriding a suggestion.
type OverrideRequest struct {
	User string `json:"user" example:"alex"`
	// Value is the replacement action text; required.
	Value string `json:"value" binding:"required" example:"forward_to_sales"`
	Note  string `json:"note"`
}

// MissingFieldsResponse is returned when an accept lacks required values.
type MissingFieldsResponse struct {
	ErrorResponse
	MissingFields []string `json:"missing_fields"`
}

// decisionUser normalizes the submitted user name.
func decisionUser(raw string) string {
	if u := strings.TrimSpace(raw); u != "" {
		return u
	}
	return "ops"
}

// AcceptSuggestion godoc
// @ID          acceptSuggestion
// @Summary     Accept a suggestion
// @Description Records an accept decision and auto-generates a reply draft. Rejected with 422 when required customer fields are missing.
// @Tags        Suggestions
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                   true  "Suggestion ID (UUID)"  format(uuid)
// @Param       body  body  handlers.AcceptRequest   true  "Accept payload"
//
// @Success     200  {object} services.AcceptResult
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Suggestion not found"
// @Failure     422  {object} handlers.MissingFieldsResponse "Required fields missing"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /suggestions/{id}/accept [post]
func (h *Handlers) AcceptSuggestion(c *gin.Context) {
	id := c.Param("id")
	if !requireUUID(c, "suggestion id", id) {
		return
	}

	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res, err := h.decisionSvc.Accept(c.Request.Context(), id, services.AcceptInput{
		User:              decisionUser(req.User),
		Provided:          req.Provided,
		ResponderProvided: req.ResponderProvided,
		Note:              req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSuggestionNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "suggestion not found")
		case errors.Is(err, services.ErrMissingFields):
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, MissingFieldsResponse{
				ErrorResponse: ErrorResponse{
					RequestID: c.Writer.Header().Get("X-Request-ID"),
					Code:      ErrCodeMissingFields,
					Message:   "required fields missing",
				},
				MissingFields: res.MissingFields,
			})
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "accept failed")
		}
		return
	}
	ok(c, http.StatusOK, res)
}

// OverrideSuggestion godoc
// @ID          overrideSuggestion
// @Summary     Override a suggestion
// @Description Records a decision replacing the suggested action with free text; stored as "override:<text>".
// @Tags        Suggestions
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                     true  "Suggestion ID (UUID)"  format(uuid)
// @Param       body  body  handlers.OverrideRequest   true  "Override payload"
//
// @Success     200  {object} domain.Decision
// @Failure     400  {object} handlers.ErrorResponse "Bad request or empty override"
// @Failure     404  {object} handlers.ErrorResponse "Suggestion not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /suggestions/{id}/override [post]
func (h *Handlers) OverrideSuggestion(c *gin.Context) {
	id := c.Param("id")
	if !requireUUID(c, "suggestion id", id) {
		return
	}

	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	dec, err := h.decisionSvc.Override(c.Request.Context(), id, decisionUser(req.User), req.Value, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSuggestionNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "suggestion not found")
		case errors.Is(err, services.ErrEmptyOverride):
			fail(c, http.StatusBadRequest, ErrCodeEmptyOverride, "override value required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "override failed")
		}
		return
	}
	ok(c, http.StatusOK, dec)
}
