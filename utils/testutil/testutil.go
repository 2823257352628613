// Package testutil holds the helpers shared by the handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"techlympics/config"
	"techlympics/database"
	"techlympics/models"
	"techlympics/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// NewRouter opens a fresh in-memory database and returns an engine whose /api/v1 group is passed to register
func NewRouter(t *testing.T, register func(r *gin.RouterGroup)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.JWTSecret = "test-secret"
	config.JWTExpiry = time.Hour
	config.CookieName = "techlympics-auth"
	config.MailHost = ""

	_, err := database.OpenTestDB()
	require.NoError(t, err)
	require.NoError(t, utils.SetupBindingValidators())

	r := gin.New()
	register(r.Group("/api/v1"))
	return r
}

// DoJSON performs a request with an optional JSON body and bearer token
func DoJSON(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	return Do(r, method, path, &buf, "application/json", token)
}

// Do performs a request with a raw body
func Do(r *gin.Engine, method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// CreateUser inserts an active user with the role and returns it with a valid token
func CreateUser(t *testing.T, email, role string) (models.User, string) {
	t.Helper()
	hashed, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{Name: "Test " + role, Email: email, Password: hashed, Role: role, IsActive: true}
	require.NoError(t, database.DB.Create(&user).Error)

	token, err := utils.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

// Decode unmarshals the recorded body into dest
func Decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}
