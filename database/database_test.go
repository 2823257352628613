package database

import (
	"testing"

	"techlympics/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulateIsIdempotent(t *testing.T) {
	db, err := OpenTestDB()
	require.NoError(t, err)

	Populate(db)
	Populate(db)

	var admins int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error)
	assert.Equal(t, int64(1), admins)

	var groups int64
	require.NoError(t, db.Model(&models.TargetGroup{}).Count(&groups).Error)
	assert.Equal(t, int64(len(DefaultTargetGroups)), groups)

	var admin models.User
	require.NoError(t, db.Where("email = ?", DefaultAdminEmail).First(&admin).Error)
	assert.True(t, admin.IsActive)
	assert.NotEqual(t, DefaultPassword, admin.Password)
}

func TestOperationDurationIsRecorded(t *testing.T) {
	db, err := OpenTestDB()
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Zone{Name: "Tengah"}).Error)
	var zones []models.Zone
	require.NoError(t, db.Find(&zones).Error)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, family := range families {
		if family.GetName() != "techlympics_db_operation_duration_seconds" {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["table"] == "zones" && m.GetHistogram().GetSampleCount() > 0 {
				seen[labels["operation"]] = true
			}
		}
	}
	assert.True(t, seen["create"])
	assert.True(t, seen["query"])
}
