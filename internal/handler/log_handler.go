package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskminder/internal/repository"
)

// GetLogs returns ingest logs, newest first, with pagination
func (h *Handlers) GetLogs(c *gin.Context) {
	ctx := c.Request.Context()
	page, limit, offset := pagination(c)

	total, err := h.repo.CountLogs(ctx)
	if err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to count logs")
		return
	}

	logs, err := h.repo.ListLogs(ctx, offset, limit)
	if err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to fetch logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":       logs,
		"pagination": Pagination{Page: page, Limit: limit, Total: total},
	})
}

// GetLog returns a specific ingest log entry
func (h *Handlers) GetLog(c *gin.Context) {
	id, ok := parseID(c, "log")
	if !ok {
		return
	}

	entry, err := h.repo.GetLog(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		abort(c, http.StatusNotFound, "not_found", "Log not found")
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to fetch log")
		return
	}
	c.JSON(http.StatusOK, entry)
}
