package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sunbird/internal/logger"
	"sunbird/internal/models"
)

// Activities handlers

// CreateActivity - POST /api/activities
// Создать активность
func (h *Handlers) CreateActivity(c *gin.Context) {
	var req models.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Activities.Create(c.Request.Context(), &req)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to create activity", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListActivities - GET /api/activities
// Поиск активностей через discovery индекс
func (h *Handlers) ListActivities(c *gin.Context) {
	query := c.Query("query")
	location := c.Query("location")
	date := c.Query("date")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	response, err := h.services.Activities.Search(c.Request.Context(), query, location, date, page, pageSize)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to search activities", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// CreateOccurrence - POST /api/occurrences
// Создать дату проведения активности
func (h *Handlers) CreateOccurrence(c *gin.Context) {
	var req models.CreateOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Activities.CreateOccurrence(c.Request.Context(), &req)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to create occurrence", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListOccurrences - GET /api/activities/:id/occurrences
// Будущие даты проведения активности
func (h *Handlers) ListOccurrences(c *gin.Context) {
	activityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	response, err := h.services.Activities.ListOccurrences(c.Request.Context(), activityID)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to list occurrences", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
