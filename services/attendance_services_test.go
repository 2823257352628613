package services

import (
	"errors"
	"testing"
	"time"

	"techlympics/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncEventAttendance(t *testing.T) {
	db := setupTestDB(t)
	f := createEventFixture(t, db, time.Now().Add(time.Hour))

	// a pending registration must not be synced
	other := createEventFixture(t, db, time.Now())
	require.NoError(t, db.Create(&models.EventContestTeam{
		EventContestID: f.EventContest.ID,
		TeamID:         other.Team.ID,
		Status:         models.RegistrationPending,
	}).Error)

	result, err := SyncEventAttendance(db, f.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Teams)
	assert.Equal(t, 2, result.Contestants)
	assert.Equal(t, 1, result.Managers)

	var contestants []models.AttendanceContestant
	require.NoError(t, db.Where("event_id = ?", f.Event.ID).Find(&contestants).Error)
	require.Len(t, contestants, 2)
	for _, c := range contestants {
		assert.Equal(t, models.AttendanceNotPresent, c.AttendanceStatus)
		assert.Equal(t, f.Contingent.ID, c.ContingentID)
		require.NotNil(t, c.TeamID)
		assert.Equal(t, f.Team.ID, *c.TeamID)
		assert.NotEmpty(t, c.IC)
	}

	again, err := SyncEventAttendance(db, f.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{}, *again)
}

func TestCheckIn(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	f := createEventFixture(t, db, start)

	_, err := SyncEventAttendance(db, f.Event.ID)
	require.NoError(t, err)

	endpoint := models.AttendanceEndpoint{EventID: f.Event.ID, EndpointHash: "endpoint-1", Passcode: "1234"}
	require.NoError(t, db.Create(&endpoint).Error)

	var manager models.AttendanceManager
	require.NoError(t, db.Where("event_id = ?", f.Event.ID).First(&manager).Error)
	var contestant models.AttendanceContestant
	require.NoError(t, db.Where("event_id = ?", f.Event.ID).First(&contestant).Error)

	during := start.Add(time.Hour)

	t.Run("unknown endpoint", func(t *testing.T) {
		_, err := CheckIn(db, f.Event.ID, "nope", manager.Hashcode, during)
		assert.ErrorIs(t, err, ErrEndpointNotFound)
	})

	t.Run("outside the window", func(t *testing.T) {
		_, err := CheckIn(db, f.Event.ID, endpoint.EndpointHash, manager.Hashcode, start.Add(-3*time.Hour))
		assert.ErrorIs(t, err, ErrAttendanceNotOpen)
		_, err = CheckIn(db, f.Event.ID, endpoint.EndpointHash, manager.Hashcode, start.Add(9*time.Hour))
		assert.ErrorIs(t, err, ErrAttendanceNotOpen)
	})

	t.Run("contestant code is refused", func(t *testing.T) {
		_, err := CheckIn(db, f.Event.ID, endpoint.EndpointHash, contestant.Hashcode, during)
		assert.ErrorIs(t, err, ErrContestantCode)
		_, err = CheckIn(db, f.Event.ID, endpoint.EndpointHash, contestant.IC, during)
		assert.ErrorIs(t, err, ErrContestantCode)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := CheckIn(db, f.Event.ID, endpoint.EndpointHash, "TC25-UNKNOWN", during)
		assert.ErrorIs(t, err, ErrAttendanceCodeUnknown)
	})

	t.Run("check in the whole contingent", func(t *testing.T) {
		early := start.Add(-time.Hour)
		result, err := CheckIn(db, f.Event.ID, endpoint.EndpointHash, manager.Hashcode, early)
		require.NoError(t, err)
		assert.Equal(t, f.Contingent.Name, result.Name)
		assert.Equal(t, "Unknown Institution", result.Institution)
		assert.EqualValues(t, 1, result.ManagersUpdated)
		assert.EqualValues(t, 2, result.ContestantsUpdated)
		assert.EqualValues(t, 1, result.TeamsUpdated)
		assert.EqualValues(t, 3, result.TotalUpdated)

		var team models.AttendanceTeam
		require.NoError(t, db.Where("event_id = ?", f.Event.ID).First(&team).Error)
		assert.Equal(t, models.AttendancePresent, team.AttendanceStatus)
	})

	t.Run("second check in is refused", func(t *testing.T) {
		_, err := CheckIn(db, f.Event.ID, endpoint.EndpointHash, manager.Hashcode, during)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAlreadyCheckedIn))
	})
}

func TestAttendanceStatisticsAndMarking(t *testing.T) {
	db := setupTestDB(t)
	f := createEventFixture(t, db, time.Now())
	_, err := SyncEventAttendance(db, f.Event.ID)
	require.NoError(t, err)

	var contestants []models.AttendanceContestant
	require.NoError(t, db.Where("event_id = ?", f.Event.ID).Order("id").Find(&contestants).Error)

	n, err := MarkAttendance(db, f.Event.ID, "contestant", []uint{contestants[0].ID}, true, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	stats, err := GetAttendanceStatistics(db, f.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, AttendanceCount{Total: 2, Present: 1, Absent: 1}, stats.Contestants)
	assert.Equal(t, AttendanceCount{Total: 1, Present: 0, Absent: 1}, stats.Managers)
	assert.Equal(t, AttendanceCount{Total: 1, Present: 0, Absent: 1}, stats.Teams)
	require.Len(t, stats.Contingents, 1)
	assert.Equal(t, f.Contingent.Name, stats.Contingents[0].ContingentName)
	assert.EqualValues(t, 2, stats.Contingents[0].Contestants)
	assert.EqualValues(t, 1, stats.Contingents[0].Present)

	n, err = MarkAttendance(db, f.Event.ID, "contestant", []uint{contestants[0].ID}, false, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var reverted models.AttendanceContestant
	require.NoError(t, db.First(&reverted, contestants[0].ID).Error)
	assert.Equal(t, models.AttendanceNotPresent, reverted.AttendanceStatus)
	assert.Nil(t, reverted.AttendanceDate)

	_, err = MarkAttendance(db, f.Event.ID, "visitor", []uint{1}, true, time.Now())
	assert.Error(t, err)
}
