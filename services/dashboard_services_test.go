package services

import (
	"context"
	"testing"
	"time"

	"techlympics/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStatsWithoutCache(t *testing.T) {
	db := setupTestDB(t)
	state := models.State{Name: "Johor"}
	require.NoError(t, db.Create(&state).Error)

	f := createEventFixture(t, db, time.Now())
	require.NoError(t, db.Model(&f.Contingent).Update("state_id", state.ID).Error)
	createContestant(t, db, createContingent(t, db, "No State").ID)

	service := NewDashboardService(db, nil)
	stats, err := service.Stats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.Contingents)
	assert.EqualValues(t, 3, stats.Contestants)
	assert.EqualValues(t, 1, stats.Teams)
	assert.EqualValues(t, 1, stats.Participants)
	assert.Equal(t, []LabelCount{{Label: "Johor", Count: 2}, {Label: "Unknown", Count: 1}}, stats.ContestantsByState)
	assert.Equal(t, []LabelCount{{Label: models.EduLevelPrimary, Count: 3}}, stats.ContestantsByEduLevel)

	// no cache configured, invalidation is a no-op
	service.Invalidate(context.Background())
}

func TestParticipantStats(t *testing.T) {
	db := setupTestDB(t)
	f := createEventFixture(t, db, time.Now())

	stats, err := GetParticipantStats(db, f.Manager.ID)
	require.NoError(t, err)
	require.Len(t, stats.Contingents, 1)
	assert.EqualValues(t, 2, stats.Contestants)
	assert.EqualValues(t, 1, stats.Teams)
	assert.EqualValues(t, 1, stats.Registrations)

	empty, err := GetParticipantStats(db, 9999)
	require.NoError(t, err)
	assert.Empty(t, empty.Contingents)
}
