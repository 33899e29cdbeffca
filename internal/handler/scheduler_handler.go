package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskminder/internal/scheduler"
)

func (h *Handlers) requireScheduler(c *gin.Context) bool {
	if h.scheduler == nil {
		abort(c, http.StatusServiceUnavailable, "not_configured", "Scheduler is not configured")
		return false
	}
	return true
}

// StartScheduler starts the reply processing scheduler
func (h *Handlers) StartScheduler(c *gin.Context) {
	if !h.requireScheduler(c) {
		return
	}
	if err := h.scheduler.Start(); err != nil {
		abort(c, http.StatusInternalServerError, "scheduler_error", "Failed to start scheduler: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scheduler started successfully",
		"status":  "running",
	})
}

// StopScheduler stops the reply processing scheduler
func (h *Handlers) StopScheduler(c *gin.Context) {
	if !h.requireScheduler(c) {
		return
	}
	if err := h.scheduler.Stop(); err != nil {
		abort(c, http.StatusInternalServerError, "scheduler_error", "Failed to stop scheduler")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scheduler stopped successfully",
		"status":  "stopped",
	})
}

// RunOnce processes the mailbox now
func (h *Handlers) RunOnce(c *gin.Context) {
	if !h.requireScheduler(c) {
		return
	}

	summary, err := h.scheduler.RunOnce(c.Request.Context())
	if errors.Is(err, scheduler.ErrRunInProgress) {
		abort(c, http.StatusConflict, "run_in_progress", err.Error())
		return
	}
	if err != nil {
		abort(c, http.StatusBadGateway, "scheduler_error", "Failed to process replies: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reply processing completed successfully",
		"summary": summary,
	})
}

// SendReminders emails everyone with tasks due today
func (h *Handlers) SendReminders(c *gin.Context) {
	if !h.requireScheduler(c) {
		return
	}

	sent, err := h.scheduler.SendReminders(c.Request.Context())
	if err != nil {
		abort(c, http.StatusInternalServerError, "reminder_error", "Failed to send reminders: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

// GetSchedulerStatus returns the current scheduler status
func (h *Handlers) GetSchedulerStatus(c *gin.Context) {
	if !h.requireScheduler(c) {
		return
	}
	c.JSON(http.StatusOK, h.scheduler.Status())
}
