package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"techlympics/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// EventFixture is an event with one contest, one contingent and its manager, and one approved team
type EventFixture struct {
	Event        models.Event
	Contest      models.Contest
	EventContest models.EventContest
	Contingent   models.Contingent
	Manager      models.User
	Team         models.Team
	Contestants  []models.Contestant
}

var fixtureSeq int64

func nextFixtureID() int {
	return int(atomic.AddInt64(&fixtureSeq, 1))
}

// CreateContingent inserts a school contingent
func CreateContingent(t *testing.T, db *gorm.DB, name string) models.Contingent {
	t.Helper()
	contingent := models.Contingent{Name: name, ContingentType: models.ContingentTypeSchool}
	require.NoError(t, db.Create(&contingent).Error)
	return contingent
}

// CreateContestant inserts a primary school contestant with a unique IC and hashcode
func CreateContestant(t *testing.T, db *gorm.DB, contingentID uint) models.Contestant {
	t.Helper()
	n := nextFixtureID()
	contestant := models.Contestant{
		Name:         fmt.Sprintf("Contestant %d", n),
		IC:           fmt.Sprintf("0801011%05d", n),
		Gender:       "MALE",
		Age:          12,
		EduLevel:     models.EduLevelPrimary,
		Hashcode:     fmt.Sprintf("TC25-C%05d", n),
		ContingentID: contingentID,
	}
	require.NoError(t, db.Create(&contestant).Error)
	return contestant
}

// CreateEventFixture builds an eight hour event starting at start with one approved team of two contestants
func CreateEventFixture(t *testing.T, db *gorm.DB, start time.Time) *EventFixture {
	t.Helper()
	n := nextFixtureID()
	f := &EventFixture{}

	f.Event = models.Event{
		Name:      fmt.Sprintf("Event %d", n),
		Code:      fmt.Sprintf("EV%d", n),
		StartDate: start,
		EndDate:   start.Add(8 * time.Hour),
		ScopeArea: models.ScopeOpen,
	}
	require.NoError(t, db.Create(&f.Event).Error)

	f.Contest = models.Contest{Code: fmt.Sprintf("C%d", n), Name: fmt.Sprintf("Robotics %d", n), ParticipationMode: models.ParticipationTeam}
	require.NoError(t, db.Create(&f.Contest).Error)

	f.EventContest = models.EventContest{EventID: f.Event.ID, ContestID: f.Contest.ID, IsActive: true}
	require.NoError(t, db.Create(&f.EventContest).Error)

	f.Contingent = CreateContingent(t, db, fmt.Sprintf("SK Taman %d", n))

	f.Manager = models.User{Name: "Manager", Email: fmt.Sprintf("manager%d@example.com", n), Password: "x", Role: models.RoleParticipant, IsActive: true}
	require.NoError(t, db.Create(&f.Manager).Error)
	require.NoError(t, db.Create(&models.ContingentManager{UserID: f.Manager.ID, ContingentID: f.Contingent.ID, IsOwner: true}).Error)

	f.Team = models.Team{
		Name:         fmt.Sprintf("Team %d", n),
		Hashcode:     fmt.Sprintf("TC25-T%05d", n),
		ContestID:    f.Contest.ID,
		ContingentID: f.Contingent.ID,
		MaxMembers:   4,
	}
	require.NoError(t, db.Create(&f.Team).Error)

	for i := 0; i < 2; i++ {
		contestant := CreateContestant(t, db, f.Contingent.ID)
		f.Contestants = append(f.Contestants, contestant)
		require.NoError(t, db.Create(&models.TeamMember{TeamID: f.Team.ID, ContestantID: contestant.ID, Role: "MEMBER"}).Error)
	}

	require.NoError(t, db.Create(&models.EventContestTeam{
		EventContestID: f.EventContest.ID,
		TeamID:         f.Team.ID,
		Status:         models.RegistrationApproved,
	}).Error)

	return f
}
