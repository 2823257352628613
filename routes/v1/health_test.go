package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"techlympics/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, err := database.OpenTestDB()
	require.NoError(t, err)
	database.RDB = nil

	r := gin.New()
	RegisterHealthRoutes(r.Group("/api/v1"))
	RegisterMetricsRoutes(r.Group("/api/v1"))

	for _, path := range []string{"/api/v1/ping", "/api/v1/health", "/api/v1/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRegisterMountsEveryPackage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, err := database.OpenTestDB()
	require.NoError(t, err)

	r := gin.New()
	require.NotPanics(t, func() { Register(r) })

	paths := map[string]bool{}
	for _, route := range r.Routes() {
		paths[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/auth/login",
		"GET /api/v1/organizer/dashboard",
		"GET /api/v1/email/track/:file",
		"POST /api/v1/arena/contestants/:hashcode/quizzes/:quizId/submit",
		"GET /api/v1/judging/event-contests/:id/ws",
		"GET /api/v1/certificates/verify",
		"GET /swagger/*any",
	} {
		assert.True(t, paths[want], want)
	}
}
