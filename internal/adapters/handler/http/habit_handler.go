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

type HabitHandler struct {
	service *services.HabitService
}

func NewHabitHandler(service *services.HabitService) *HabitHandler {
	return &HabitHandler{service: service}
}

type goalRequest struct {
	Type       string `json:"type" binding:"required"`
	DailyGoal  int    `json:"daily_goal"`
	Comparison string `json:"comparison"`
	Unit       string `json:"unit"`
}

type frequencyRequest struct {
	Kind        string   `json:"kind" binding:"required"`
	DaysPerWeek int      `json:"days_per_week"`
	Weekdays    []string `json:"weekdays"`
}

type createHabitRequest struct {
	Name      string           `json:"name" binding:"required"`
	Category  string           `json:"category" binding:"required"`
	Goal      goalRequest      `json:"goal" binding:"required"`
	Frequency frequencyRequest `json:"frequency" binding:"required"`
	StartDate string           `json:"start_date" binding:"required"`
	EndDate   string           `json:"end_date"`
	Reminder  string           `json:"reminder"`
}

type updateHabitRequest struct {
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	Frequency *frequencyRequest `json:"frequency"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Reminder  string            `json:"reminder"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
	}
}

// habitBadRequest maps domain validation failures to a 400; everything
// else is treated as an internal error.
func habitBadRequest(err error) bool {
	for _, target := range []error{
		domain.ErrHabitNameEmpty,
		domain.ErrHabitNameTooLong,
		domain.ErrInvalidCategory,
		domain.ErrInvalidGoal,
		domain.ErrInvalidFrequency,
		domain.ErrInvalidDateRange,
		domain.ErrInvalidReminder,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.service.Create(c.Request.Context(), services.CreateHabitInput{
		UserID:         userID,
		Name:           req.Name,
		Category:       req.Category,
		GoalType:       req.Goal.Type,
		DailyGoal:      req.Goal.DailyGoal,
		GoalComparison: req.Goal.Comparison,
		GoalUnit:       req.Goal.Unit,
		Frequency:      req.Frequency.Kind,
		DaysPerWeek:    req.Frequency.DaysPerWeek,
		Weekdays:       req.Frequency.Weekdays,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Reminder:       req.Reminder,
	})
	if err != nil {
		if habitBadRequest(err) || errors.Is(err, calendar.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	habits, err := h.service.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habits)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	habit, err := h.service.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateHabitInput{
		ID:        c.Param("id"),
		UserID:    userID,
		Name:      req.Name,
		Category:  req.Category,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reminder:  req.Reminder,
	}
	if req.Frequency != nil {
		input.Frequency = req.Frequency.Kind
		input.DaysPerWeek = req.Frequency.DaysPerWeek
		input.Weekdays = req.Frequency.Weekdays
	}

	habit, err := h.service.Update(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHabitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
		case habitBadRequest(err) || errors.Is(err, calendar.ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}
