package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parsakhaledi/paydar/internal/adapters/handler/http/middleware"
	"github.com/parsakhaledi/paydar/internal/core/calendar"
	"github.com/parsakhaledi/paydar/internal/core/domain"
	"github.com/parsakhaledi/paydar/internal/core/services"
)

type LogHandler struct {
	service *services.LogService
}

func NewLogHandler(service *services.LogService) *LogHandler {
	return &LogHandler{service: service}
}

type logRequest struct {
	Date  string `json:"date" binding:"required"`
	Value int    `json:"value"`
}

func (h *LogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.PUT("/habits/:id/logs", h.Log)
	router.GET("/habits/:id/logs", h.List)
	router.DELETE("/logs/:id", h.Delete)
}

func logBadRequest(err error) bool {
	for _, target := range []error{
		calendar.ErrInvalidDate,
		domain.ErrLogBeforeStart,
		domain.ErrLogAfterEnd,
		domain.ErrLogInvalidDay,
		domain.ErrLogValueInvalid,
		domain.ErrLogBooleanValue,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Log upserts the entry for one day: logging a date that already has an
// entry replaces its value.
func (h *LogHandler) Log(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req logRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.service.Log(c.Request.Context(), services.LogInput{
		HabitID: c.Param("id"),
		UserID:  userID,
		Date:    req.Date,
		Value:   req.Value,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHabitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
		case logBadRequest(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *LogHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entries, err := h.service.ListByHabitID(
		c.Request.Context(),
		c.Param("id"),
		userID,
		c.Query("from"),
		c.Query("to"),
	)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *LogHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrLogNotFound), errors.Is(err, domain.ErrHabitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
