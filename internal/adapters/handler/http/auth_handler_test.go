package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/parsakhaledi/paydar/internal/adapters/handler/http"
	"github.com/parsakhaledi/paydar/internal/adapters/repository"
	"github.com/parsakhaledi/paydar/internal/core/services"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	users := repository.NewMemoryUserRepository()
	tokens := services.NewTokenService("test-secret", time.Hour, users)
	handler := adapterHTTP.NewAuthHandler(services.NewAuthService(users), tokens)

	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest("POST", url, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	r := setupAuthRouter()

	t.Run("creates a new account", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/auth/register", gin.H{
			"name":     "Parsa",
			"email":    "parsa@example.com",
			"password": "s3cret-pass",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "parsa@example.com", resp["email"])
		assert.NotEmpty(t, resp["id"])
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/auth/register", gin.H{
			"name":     "Parsa",
			"email":    "parsa@example.com",
			"password": "another-pass",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects invalid payloads", func(t *testing.T) {
		cases := []gin.H{
			{"name": "X", "email": "not-an-email", "password": "s3cret-pass"},
			{"name": "X", "email": "short@example.com", "password": "short"},
			{"name": "X", "password": "s3cret-pass"},
		}
		for _, body := range cases {
			w := postJSON(t, r, "/api/v1/auth/register", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	})
}

func TestLoginEndpoint(t *testing.T) {
	r := setupAuthRouter()

	w := postJSON(t, r, "/api/v1/auth/register", gin.H{
		"name":     "Parsa",
		"email":    "parsa@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("returns a token on valid credentials", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/auth/login", gin.H{
			"email":    "parsa@example.com",
			"password": "s3cret-pass",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["token"])
		assert.NotNil(t, resp["user"])
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/auth/login", gin.H{
			"email":    "parsa@example.com",
			"password": "wrong-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an unknown email", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/auth/login", gin.H{
			"email":    "ghost@example.com",
			"password": "s3cret-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
