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

type StatsHandler struct {
	provider services.StatsProvider
	svc      *services.StatsService
}

// NewStatsHandler takes the provider serving single-habit reads (usually
// the Redis-backed decorator) and the underlying service for the
// all-habits fan-out.
func NewStatsHandler(provider services.StatsProvider, svc *services.StatsService) *StatsHandler {
	return &StatsHandler{provider: provider, svc: svc}
}

func (h *StatsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/habits/:id/stats", h.GetHabitStats)
	router.GET("/stats", h.GetAllStats)
}

func (h *StatsHandler) GetHabitStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// ownership check before touching the cache
	if _, err := h.svc.HabitForUser(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.writeError(c, err)
		return
	}

	report, err := h.provider.GetHabitStats(
		c.Request.Context(),
		c.Param("id"),
		c.Query("calendar"),
		c.Query("date"),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *StatsHandler) GetAllStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	results, err := h.svc.GetAllStats(
		c.Request.Context(),
		userID,
		c.Query("calendar"),
		c.Query("date"),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *StatsHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, calendar.ErrUnknownSystem):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown calendar system"})
	case errors.Is(err, calendar.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	case errors.Is(err, domain.ErrQueryFailed):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "statistics temporarily unavailable"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
