package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskminder/internal/model"
)

// SubmitReply runs a reply through the same pipeline as mailbox replies and
// returns the per-line outcome.
func (h *Handlers) SubmitReply(c *gin.Context) {
	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	id := "api-" + uuid.NewString()
	outcome, err := h.pipeline.Process(c.Request.Context(), model.EmailMessage{
		ID:        id,
		MessageID: req.MessageID,
		From:      req.From,
		Subject:   req.Subject,
		Body:      req.Body,
	})
	if err != nil {
		logrus.Errorf("Failed to process submitted reply: %v", err)
		abort(c, http.StatusServiceUnavailable, "database_error", "Failed to process reply")
		return
	}

	c.JSON(http.StatusOK, outcome)
}
