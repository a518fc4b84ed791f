// Action rule HTTP handlers.
//
//   - GET /rules          (effective intent→action mapping)
//   - PUT /rules/{intent} (install an operator override)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajeev-kl/finkraft-t13/internal/services"
)

// SetRuleRequest is the JSON payload for installing an action override.
type SetRuleRequest struct {
	Action string `json:"action" binding:"required" example:"send_group_rates"`
}

// ListRules godoc
// @ID          listRules
// @Summary     List intent→action rules
// @Description Returns the effective mapping: operator overrides plus built-in defaults not shadowed by one.
// @Tags        Rules
// @Produce     json
//
// @Success     200  {array}  services.RuleEntry
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /rules [get]
func (h *Handlers) ListRules(c *gin.Context) {
	entries, err := h.rulesSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "listing rules failed")
		return
	}
	ok(c, http.StatusOK, entries)
}

// SetRule godoc
// @ID          setRule
// @Summary     Set an intent→action override
// @Description Installs or replaces the action for an intent. Overrides shadow the built-in defaults for new suggestions.
// @Tags        Rules
// @Accept      json
// @Produce     json
//
// @Param       intent  path  string                   true  "Intent name"  example(group_availability)
// @Param       body    body  handlers.SetRuleRequest  true  "Override payload"
//
// @Success     200  {object} domain.ActionRule
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /rules/{intent} [put]
func (h *Handlers) SetRule(c *gin.Context) {
	var req SetRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "action required")
		return
	}

	rule, err := h.rulesSvc.Set(c.Request.Context(), c.Param("intent"), req.Action)
	if err != nil {
		if errors.Is(err, services.ErrMalformedInput) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "intent and action required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "saving rule failed")
		return
	}
	ok(c, http.StatusOK, rule)
}
