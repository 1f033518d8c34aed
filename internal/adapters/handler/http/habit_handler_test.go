package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/parsakhaledi/paydar/internal/adapters/handler/http"
	"github.com/parsakhaledi/paydar/internal/adapters/handler/http/middleware"
	"github.com/parsakhaledi/paydar/internal/adapters/repository"
	"github.com/parsakhaledi/paydar/internal/core/domain"
	"github.com/parsakhaledi/paydar/internal/core/services"
)

func setupHabitRouter(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	habits := repository.NewMemoryHabitRepository()
	logs := repository.NewMemoryLogRepository()
	handler := adapterHTTP.NewHabitHandler(services.NewHabitService(habits, logs, nil))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
	})
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func habitPayload() gin.H {
	return gin.H{
		"name":     "Read",
		"category": "Study",
		"goal": gin.H{
			"type":       "numeric",
			"daily_goal": 20,
			"comparison": "at-least",
			"unit":       "pages",
		},
		"frequency":  gin.H{"kind": "every-day"},
		"start_date": "2024-01-01",
	}
}

func sendJSON(t *testing.T, r *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createHabitViaAPI(t *testing.T, r *gin.Engine, payload gin.H) domain.Habit {
	t.Helper()
	w := sendJSON(t, r, "POST", "/api/v1/habits", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var habit domain.Habit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &habit))
	return habit
}

func TestCreateHabitEndpoint(t *testing.T) {
	r := setupHabitRouter("user-1")

	t.Run("creates a numeric habit", func(t *testing.T) {
		habit := createHabitViaAPI(t, r, habitPayload())
		assert.NotEmpty(t, habit.ID)
		assert.Equal(t, "user-1", habit.UserID)
		assert.Equal(t, "Read", habit.Name)
		assert.Equal(t, "numeric", habit.Goal.Type)
		assert.Equal(t, 20, habit.Goal.DailyGoal)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(gin.H)
		}{
			{"unknown category", func(p gin.H) { p["category"] = "Chores" }},
			{"unknown goal type", func(p gin.H) { p["goal"] = gin.H{"type": "hourly"} }},
			{"bad date", func(p gin.H) { p["start_date"] = "2024-02-30" }},
			{"end before start", func(p gin.H) { p["end_date"] = "2023-12-01" }},
			{"bad reminder", func(p gin.H) { p["reminder"] = "25:99" }},
			{"bad weekday list", func(p gin.H) {
				p["frequency"] = gin.H{"kind": "specific-days-of-week", "weekdays": []string{"Mon", "Funday"}}
			}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				payload := habitPayload()
				tc.mutate(payload)
				w := sendJSON(t, r, "POST", "/api/v1/habits", payload)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})
}

func TestHabitLifecycleEndpoints(t *testing.T) {
	r := setupHabitRouter("user-1")
	habit := createHabitViaAPI(t, r, habitPayload())

	t.Run("list returns owned habits", func(t *testing.T) {
		w := sendJSON(t, r, "GET", "/api/v1/habits", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var habits []domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &habits))
		require.Len(t, habits, 1)
		assert.Equal(t, habit.ID, habits[0].ID)
	})

	t.Run("get by id", func(t *testing.T) {
		w := sendJSON(t, r, "GET", "/api/v1/habits/"+habit.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = sendJSON(t, r, "GET", "/api/v1/habits/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update merges fields", func(t *testing.T) {
		w := sendJSON(t, r, "PUT", "/api/v1/habits/"+habit.ID, gin.H{"name": "Read more"})
		require.Equal(t, http.StatusOK, w.Code)

		var updated domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "Read more", updated.Name)
		assert.Equal(t, habit.Category, updated.Category)
		assert.Equal(t, habit.StartDate, updated.StartDate)
	})

	t.Run("delete", func(t *testing.T) {
		w := sendJSON(t, r, "DELETE", "/api/v1/habits/"+habit.ID, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = sendJSON(t, r, "GET", "/api/v1/habits/"+habit.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHabitEndpointsHideForeignHabits(t *testing.T) {
	habits := repository.NewMemoryHabitRepository()
	logs := repository.NewMemoryLogRepository()
	handler := adapterHTTP.NewHabitHandler(services.NewHabitService(habits, logs, nil))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, "intruder")
	})
	handler.RegisterRoutes(r.Group("/api/v1"))

	owned, err := domain.NewHabit("owner", "Run", "Health",
		domain.BooleanGoal(), domain.EveryDay(), "2024-01-01", "")
	require.NoError(t, err)
	require.NoError(t, habits.Create(context.Background(), owned))

	for _, method := range []string{"GET", "DELETE"} {
		w := sendJSON(t, r, method, "/api/v1/habits/"+owned.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
	}
	w := sendJSON(t, r, "PUT", "/api/v1/habits/"+owned.ID, gin.H{"name": "Hijack"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
