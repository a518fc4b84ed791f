// Diagnostics HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajeev-kl/finkraft-t13/internal/utils"
)

// LogsResponse wraps the buffered log lines.
type LogsResponse struct {
	Lines []string `json:"lines"`
	Count int      `json:"count"`
}

// GetLogs godoc
// @ID          getLogs
// @Summary     Recent log lines
// @Description Returns the newest buffered log lines, oldest first. Read-only; the buffer is bounded in memory.
// @Tags        Diagnostics
// @Produce     json
//
// @Param       limit  query  int  false  "Maximum lines to return"  minimum(1)
//
// @Success     200  {object} handlers.LogsResponse
// @Router      /logs [get]
func (h *Handlers) GetLogs(c *gin.Context) {
	lines := h.logs.Recent()
	if limit := utils.AtoiDefault(c.Query("limit"), 0); limit > 0 && limit < len(lines) {
		lines = lines[len(lines)-limit:]
	}
	ok(c, http.StatusOK, LogsResponse{Lines: lines, Count: len(lines)})
}
