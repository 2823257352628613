package announcements

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"techlympics/models"
	"techlympics/utils/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncements(t *testing.T) {
	r := testutil.NewRouter(t, RegisterRoutes)
	_, operator := testutil.CreateUser(t, "operator@example.com", models.RoleOperator)

	inactive := false
	future := time.Now().Add(48 * time.Hour)
	for _, req := range []AnnouncementRequest{
		{Title: "Pendaftaran dibuka"},
		{Title: "Draf", IsActive: &inactive},
		{Title: "Akan datang", PublishedAt: &future},
	} {
		w := testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/announcements", req, operator)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := testutil.DoJSON(r, http.MethodGet, "/api/v1/announcements", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var published []models.Announcement
	testutil.Decode(t, w, &published)
	require.Len(t, published, 1)
	assert.Equal(t, "Pendaftaran dibuka", published[0].Title)

	w = testutil.DoJSON(r, http.MethodPost, "/api/v1/organizer/announcements", AnnouncementRequest{Title: "X", Link: "not a link"}, operator)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/announcements/%d", published[0].ID), nil, operator)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = testutil.DoJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/organizer/announcements/%d", published[0].ID), nil, operator)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
