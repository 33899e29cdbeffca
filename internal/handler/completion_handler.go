package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskminder/internal/dates"
	"taskminder/internal/model"
)

func toCompletionResponse(tc model.TaskCompletion) CompletionResponse {
	return CompletionResponse{
		PersonID:       tc.PersonID,
		TaskID:         tc.TaskID,
		CompletionDate: tc.CompletionDate.Format(model.DateLayout),
		NextDueDate:    tc.NextDueDate.Format(model.DateLayout),
		UpdatedAt:      tc.UpdatedAt,
	}
}

// GetCompletions returns completions with pagination
func (h *Handlers) GetCompletions(c *gin.Context) {
	ctx := c.Request.Context()
	page, limit, offset := pagination(c)

	total, err := h.repo.CountCompletions(ctx)
	if err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to count completions")
		return
	}
	completions, err := h.repo.ListCompletions(ctx, offset, limit)
	if err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to fetch completions")
		return
	}

	responses := make([]CompletionResponse, 0, len(completions))
	for _, tc := range completions {
		responses = append(responses, toCompletionResponse(tc))
	}

	c.JSON(http.StatusOK, gin.H{
		"completions": responses,
		"pagination":  Pagination{Page: page, Limit: limit, Total: total},
	})
}

// GetDueCompletions lists completions due on or before as_of (default today).
// as_of accepts any date the reply parser accepts.
func (h *Handlers) GetDueCompletions(c *gin.Context) {
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := dates.Resolve(raw)
		if err != nil {
			abort(c, http.StatusBadRequest, "invalid_date", "Invalid as_of date")
			return
		}
		asOf = parsed
	}

	due, err := h.repo.DueCompletions(c.Request.Context(), asOf)
	if err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to fetch due tasks")
		return
	}

	responses := make([]DueTaskResponse, 0, len(due))
	for _, d := range due {
		responses = append(responses, DueTaskResponse{
			PersonID:    d.PersonID,
			Name:        d.Name,
			Email:       d.Email,
			TaskID:      d.TaskID,
			TaskName:    d.TaskName,
			NextDueDate: d.NextDueDate.Format(model.DateLayout),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"as_of": model.DateOf(asOf).Format(model.DateLayout),
		"due":   responses,
	})
}
