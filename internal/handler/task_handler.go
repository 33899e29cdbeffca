package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskminder/internal/model"
)

// GetTasks returns all tasks ordered by name
func (h *Handlers) GetTasks(c *gin.Context) {
	tasks, err := h.repo.ListTasks(c.Request.Context())
	if err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTask registers a recurring task
func (h *Handlers) CreateTask(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	task := model.Task{TaskName: req.TaskName, RecurrenceDays: req.RecurrenceDays}
	if err := h.repo.CreateTask(c.Request.Context(), &task); err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, task)
}
