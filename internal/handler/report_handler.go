package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskminder/internal/report"
)

// DownloadReport returns the completion report as an xlsx attachment
func (h *Handlers) DownloadReport(c *gin.Context) {
	if h.reports == nil {
		abort(c, http.StatusServiceUnavailable, "not_configured", "Reports are not configured")
		return
	}

	data, err := h.reports.Generate(c.Request.Context())
	if errors.Is(err, report.ErrNoData) {
		abort(c, http.StatusNotFound, "no_data", "No people or tasks to report on")
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, "report_error", "Failed to generate report")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+h.reports.FileName()+`"`)
	c.Data(http.StatusOK, report.ContentType, data)
}
