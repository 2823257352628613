package middleware

import (
	"net/http"
	"testing"

	"techlympics/database"
	"techlympics/models"
	"techlympics/utils/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthAndRoles(t *testing.T) {
	r := testutil.NewRouter(t, func(g *gin.RouterGroup) {
		protected := g.Group("/organizer", AuthMiddleware())
		protected.GET("/reports", RequireRoles(models.RoleOperator, models.RoleViewer), func(c *gin.Context) {
			user, err := GetUserFromRequest(c)
			if err != nil {
				return
			}
			c.JSON(http.StatusOK, gin.H{"id": user.ID})
		})
		g.GET("/feed", SetUserIdMiddleware(), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"signed_in": OptionalUser(c) != nil})
		})
	})

	_, adminToken := testutil.CreateUser(t, "admin@example.com", models.RoleAdmin)
	_, viewerToken := testutil.CreateUser(t, "viewer@example.com", models.RoleViewer)
	_, participantToken := testutil.CreateUser(t, "participant@example.com", models.RoleParticipant)
	inactive, inactiveToken := testutil.CreateUser(t, "inactive@example.com", models.RoleOperator)
	require.NoError(t, database.DB.Model(&inactive).Update("is_active", false).Error)

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"viewer allowed", viewerToken, http.StatusOK},
		{"admin always allowed", adminToken, http.StatusOK},
		{"participant forbidden", participantToken, http.StatusForbidden},
		{"deactivated account", inactiveToken, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := testutil.DoJSON(r, http.MethodGet, "/api/v1/organizer/reports", nil, tc.token)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}

	t.Run("optional user", func(t *testing.T) {
		var body struct {
			SignedIn bool `json:"signed_in"`
		}
		w := testutil.DoJSON(r, http.MethodGet, "/api/v1/feed", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		testutil.Decode(t, w, &body)
		assert.False(t, body.SignedIn)

		w = testutil.DoJSON(r, http.MethodGet, "/api/v1/feed", nil, participantToken)
		testutil.Decode(t, w, &body)
		assert.True(t, body.SignedIn)
	})
}
