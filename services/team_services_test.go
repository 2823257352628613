package services

import (
	"testing"
	"time"

	"techlympics/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContestant(t *testing.T) {
	db := setupTestDB(t)
	contingent := createContingent(t, db, "SK Bukit")

	input := ContestantInput{Name: " Aisyah ", IC: "100101-14-5678", Gender: "female", Age: 14, EduLevel: "Sekolah Menengah"}
	contestant, err := CreateContestant(db, contingent.ID, input, nil)
	require.NoError(t, err)
	assert.Equal(t, "Aisyah", contestant.Name)
	assert.Equal(t, "100101145678", contestant.IC)
	assert.Equal(t, "FEMALE", contestant.Gender)
	assert.Equal(t, models.EduLevelSecondary, contestant.EduLevel)
	assert.Regexp(t, `^TC25-`, contestant.Hashcode)

	_, err = CreateContestant(db, contingent.ID, input, nil)
	assert.ErrorIs(t, err, ErrDuplicateIC)

	input.IC = "1234"
	_, err = CreateContestant(db, contingent.ID, input, nil)
	assert.ErrorIs(t, err, ErrInvalidIC)

	input.IC = "100101145679"
	input.EduLevel = "tadika"
	_, err = CreateContestant(db, contingent.ID, input, nil)
	assert.ErrorIs(t, err, ErrInvalidEduLevel)
}

func TestCreateTeamLimits(t *testing.T) {
	db := setupTestDB(t)
	contingent := createContingent(t, db, "SK Limit")
	contest := models.Contest{Code: "LIM", Name: "Limit"}
	require.NoError(t, db.Create(&contest).Error)

	team := models.Team{Name: "Default", ContestID: contest.ID, ContingentID: contingent.ID}
	require.NoError(t, CreateTeam(db, &team))
	assert.Equal(t, models.DefaultTeamMaxMembers, team.MaxMembers)
	assert.NotEmpty(t, team.Hashcode)

	tooBig := models.Team{Name: "Big", ContestID: contest.ID, ContingentID: contingent.ID, MaxMembers: 11}
	assert.ErrorIs(t, CreateTeam(db, &tooBig), ErrInvalidTeamSize)
}

func TestAddTeamMember(t *testing.T) {
	db := setupTestDB(t)
	contingent := createContingent(t, db, "SK Ahli")
	limit := 2
	contest := models.Contest{Code: "PAIR", Name: "Pairs", MaxMembersPerTeam: &limit}
	require.NoError(t, db.Create(&contest).Error)

	team := models.Team{Name: "Duo", ContestID: contest.ID, ContingentID: contingent.ID, MaxMembers: 5}
	require.NoError(t, CreateTeam(db, &team))

	first := createContestant(t, db, contingent.ID)
	second := createContestant(t, db, contingent.ID)
	third := createContestant(t, db, contingent.ID)
	outsider := createContestant(t, db, createContingent(t, db, "SK Lain").ID)

	member, err := AddTeamMember(db, team.ID, first.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "MEMBER", member.Role)

	_, err = AddTeamMember(db, team.ID, first.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyTeamMember)

	_, err = AddTeamMember(db, team.ID, outsider.ID, "")
	assert.ErrorIs(t, err, ErrMemberContingentMismatch)

	_, err = AddTeamMember(db, team.ID, second.ID, "LEADER")
	require.NoError(t, err)

	_, err = AddTeamMember(db, team.ID, third.ID, "")
	assert.ErrorIs(t, err, ErrTeamFull)

	require.NoError(t, RemoveTeamMember(db, team.ID, second.ID))
	_, err = AddTeamMember(db, team.ID, third.ID, "")
	assert.NoError(t, err)
	assert.Error(t, RemoveTeamMember(db, team.ID, outsider.ID))
}

func TestRegisterTeam(t *testing.T) {
	db := setupTestDB(t)
	f := createEventFixture(t, db, time.Now())
	require.NoError(t, db.Model(&f.EventContest).Update("max_participants", 2).Error)

	second := models.Team{Name: "Second", ContestID: f.Contest.ID, ContingentID: f.Contingent.ID}
	require.NoError(t, CreateTeam(db, &second))

	_, err := RegisterTeam(db, f.EventContest.ID, f.Team.ID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	registration, err := RegisterTeam(db, f.EventContest.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationPending, registration.Status)

	third := models.Team{Name: "Third", ContestID: f.Contest.ID, ContingentID: f.Contingent.ID}
	require.NoError(t, CreateTeam(db, &third))
	_, err = RegisterTeam(db, f.EventContest.ID, third.ID)
	assert.ErrorIs(t, err, ErrEventContestFull)

	require.NoError(t, SetRegistrationStatus(db, registration.ID, models.RegistrationRejected))
	_, err = RegisterTeam(db, f.EventContest.ID, third.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, SetRegistrationStatus(db, registration.ID, "MAYBE"), ErrInvalidRegistrationStatus)

	otherContest := models.Contest{Code: "OTHER-C", Name: "Other"}
	require.NoError(t, db.Create(&otherContest).Error)
	stray := models.Team{Name: "Stray", ContestID: otherContest.ID, ContingentID: f.Contingent.ID}
	require.NoError(t, CreateTeam(db, &stray))
	_, err = RegisterTeam(db, f.EventContest.ID, stray.ID)
	assert.ErrorIs(t, err, ErrTeamContestMismatch)

	require.NoError(t, db.Model(&f.Event).Update("status", models.EventStatusCutoffRegistration).Error)
	_, err = RegisterTeam(db, f.EventContest.ID, stray.ID)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestContingentManagement(t *testing.T) {
	db := setupTestDB(t)
	owner := models.User{Name: "Owner", Email: "owner@example.com", Password: "x", Role: models.RoleParticipant}
	helper := models.User{Name: "Helper", Email: "helper@example.com", Password: "x", Role: models.RoleParticipant}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&helper).Error)

	contingent := models.Contingent{Name: "SMK Seri", ContingentType: models.ContingentTypeSchool}
	require.NoError(t, CreateContingent(db, &contingent, owner.ID))

	dup := models.Contingent{Name: "smk seri"}
	assert.ErrorIs(t, CreateContingent(db, &dup, helper.ID), ErrContingentExists)

	managed, err := GetManagedContingent(db, owner.ID, contingent.ID)
	require.NoError(t, err)
	assert.Equal(t, "SMK Seri", managed.Name)

	_, err = GetManagedContingent(db, helper.ID, contingent.ID)
	assert.ErrorIs(t, err, ErrNotContingentManager)

	request, err := RequestContingentAccess(db, helper.ID, contingent.ID)
	require.NoError(t, err)
	_, err = RequestContingentAccess(db, helper.ID, contingent.ID)
	assert.ErrorIs(t, err, ErrRequestPending)

	reviewed, err := ReviewContingentRequest(db, request.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, reviewed.Status)
	_, err = ReviewContingentRequest(db, request.ID, false)
	assert.ErrorIs(t, err, ErrRequestNotPending)

	ids, err := ManagedContingentIDs(db, helper.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{contingent.ID}, ids)

	_, err = RequestContingentAccess(db, helper.ID, contingent.ID)
	assert.ErrorIs(t, err, ErrAlreadyManager)

	assert.ErrorIs(t, RemoveContingentManager(db, contingent.ID, owner.ID), ErrOwnerCannotBeRemoved)
	assert.NoError(t, RemoveContingentManager(db, contingent.ID, helper.ID))
}

func TestCanManageContingent(t *testing.T) {
	db := setupTestDB(t)
	f := createEventFixture(t, db, time.Now())
	stranger := models.User{ID: 9999, Role: models.RoleParticipant}
	operator := models.User{ID: 9998, Role: models.RoleOperator}
	viewer := models.User{ID: 9997, Role: models.RoleViewer}

	assert.True(t, CanManageContingent(db, &f.Manager, f.Contingent.ID))
	assert.False(t, CanManageContingent(db, &stranger, f.Contingent.ID))
	assert.True(t, CanManageContingent(db, &operator, f.Contingent.ID))
	assert.False(t, CanManageContingent(db, &viewer, f.Contingent.ID))
}
