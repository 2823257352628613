package services

import (
	"testing"
	"time"

	"techlympics/models"
	"techlympics/utils/testutil"

	"gorm.io/gorm"
)

type eventFixture = testutil.EventFixture

func createContingent(t *testing.T, db *gorm.DB, name string) models.Contingent {
	return testutil.CreateContingent(t, db, name)
}

func createContestant(t *testing.T, db *gorm.DB, contingentID uint) models.Contestant {
	return testutil.CreateContestant(t, db, contingentID)
}

func createEventFixture(t *testing.T, db *gorm.DB, start time.Time) *eventFixture {
	return testutil.CreateEventFixture(t, db, start)
}
