package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskminder/internal/model"
	"taskminder/internal/repository"
)

// GetPeople returns all people ordered by name
func (h *Handlers) GetPeople(c *gin.Context) {
	people, err := h.repo.ListPeople(c.Request.Context())
	if err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to fetch people")
		return
	}
	c.JSON(http.StatusOK, people)
}

// CreatePerson registers a person
func (h *Handlers) CreatePerson(c *gin.Context) {
	var req PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	person := model.Person{Name: req.Name, Email: req.Email}
	if err := h.repo.CreatePerson(c.Request.Context(), &person); err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to create person")
		return
	}
	c.JSON(http.StatusCreated, person)
}

// GetPerson returns a specific person
func (h *Handlers) GetPerson(c *gin.Context) {
	id, ok := parseID(c, "person")
	if !ok {
		return
	}

	person, err := h.repo.GetPerson(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		abort(c, http.StatusNotFound, "not_found", "Person not found")
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to fetch person")
		return
	}
	c.JSON(http.StatusOK, person)
}
