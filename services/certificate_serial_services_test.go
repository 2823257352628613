package services

import (
	"fmt"
	"testing"
	"time"

	"techlympics/database"
	"techlympics/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenTestDB()
	require.NoError(t, err)
	return db
}

func TestFormatAndValidateSerialNumber(t *testing.T) {
	serial := FormatSerialNumber(2025, "GEN", 5, 1)
	assert.Equal(t, "MT25/GEN/T5/000001", serial)
	assert.True(t, ValidateSerialNumber(serial))

	for _, invalid := range []string{
		"MT25/XYZ/T5/000001",
		"MT25/GEN/5/000001",
		"MT25/GEN/T5/0001",
		"XX25/GEN/T5/000001",
		"MT2025/GEN/T5/000001",
		"",
	} {
		assert.False(t, ValidateSerialNumber(invalid), invalid)
	}
}

func TestParseSerialNumber(t *testing.T) {
	parsed, ok := ParseSerialNumber("MT25/QWIN/T12/000042")
	require.True(t, ok)
	assert.Equal(t, &ParsedSerial{
		Prefix:     "MT",
		Year:       2025,
		YearShort:  "25",
		TypeCode:   "QWIN",
		TemplateID: 12,
		Sequence:   42,
	}, parsed)

	for _, invalid := range []string{"MT25/GEN/T5", "MT25/GEN/5/000001", "MTxx/GEN/T5/000001", "MT25/GEN/T5/abc"} {
		_, ok := ParseSerialNumber(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestGenerateSerialNumber(t *testing.T) {
	db := setupTestDB(t)

	t.Run("sequences are independent per template and type", func(t *testing.T) {
		first, err := GenerateSerialNumber(db, 5, models.TargetGeneral, 2025)
		require.NoError(t, err)
		assert.Equal(t, "MT25/GEN/T5/000001", first)

		second, err := GenerateSerialNumber(db, 5, models.TargetGeneral, 2025)
		require.NoError(t, err)
		assert.Equal(t, "MT25/GEN/T5/000002", second)

		other, err := GenerateSerialNumber(db, 5, models.TargetEventWinner, 2025)
		require.NoError(t, err)
		assert.Equal(t, "MT25/WIN/T5/000001", other)

		nextYear, err := GenerateSerialNumber(db, 5, models.TargetGeneral, 2026)
		require.NoError(t, err)
		assert.Equal(t, "MT26/GEN/T5/000001", nextYear)
	})

	t.Run("preview does not reserve", func(t *testing.T) {
		preview, err := PreviewNextSerialNumber(db, 5, models.TargetGeneral, 2025)
		require.NoError(t, err)
		assert.Equal(t, "MT25/GEN/T5/000003", preview)

		current, err := GetCurrentSequence(db, 5, models.TargetGeneral, 2025)
		require.NoError(t, err)
		assert.Equal(t, 2, current)
	})

	t.Run("unknown target type", func(t *testing.T) {
		_, err := GenerateSerialNumber(db, 5, "BOGUS", 2025)
		assert.ErrorIs(t, err, ErrInvalidTargetType)

		_, err = PreviewNextSerialNumber(db, 5, "BOGUS", 2025)
		assert.ErrorIs(t, err, ErrInvalidTargetType)
	})

	t.Run("reset and listing", func(t *testing.T) {
		require.NoError(t, ResetSequence(db, 5, models.TargetGeneral, 2025))
		current, err := GetCurrentSequence(db, 5, models.TargetGeneral, 2025)
		require.NoError(t, err)
		assert.Equal(t, 0, current)

		assert.ErrorIs(t, ResetSequence(db, 5, "BOGUS", 2025), ErrInvalidTargetType)

		year := time.Now().Year()
		_, err = GenerateSerialNumber(db, 6, models.TargetGeneral, year)
		require.NoError(t, err)
		require.NoError(t, ResetSequence(db, 6, models.TargetGeneral, 0))
		current, err = GetCurrentSequence(db, 6, models.TargetGeneral, year)
		require.NoError(t, err)
		assert.Equal(t, 0, current)

		serials, err := GetTemplateSerials(db, 5)
		require.NoError(t, err)
		require.Len(t, serials, 3)
		assert.Equal(t, 2026, serials[0].Year)
	})
}

func TestSerialStatsAndLookup(t *testing.T) {
	db := setupTestDB(t)

	template := models.CertTemplate{TemplateName: "Participation", Status: models.TemplateStatusActive, TargetType: models.TargetEventParticipant}
	require.NoError(t, db.Create(&template).Error)

	for i := 0; i < 3; i++ {
		serial, err := GenerateSerialNumber(db, template.ID, models.TargetEventParticipant, 2025)
		require.NoError(t, err)
		cert := models.Certificate{
			TemplateID:    template.ID,
			RecipientName: fmt.Sprintf("Recipient %d", i),
			UniqueCode:    fmt.Sprintf("CODE-%d", i),
			SerialNumber:  &serial,
			Status:        models.CertificateGenerated,
		}
		require.NoError(t, db.Create(&cert).Error)
	}

	exists, err := SerialNumberExists(db, FormatSerialNumber(2025, "PART", template.ID, 2))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = SerialNumberExists(db, FormatSerialNumber(2025, "PART", template.ID, 9))
	require.NoError(t, err)
	assert.False(t, exists)

	cert, err := GetCertificateBySerial(db, FormatSerialNumber(2025, "PART", template.ID, 3))
	require.NoError(t, err)
	assert.Equal(t, "Recipient 2", cert.RecipientName)
	require.NotNil(t, cert.Template)
	assert.Equal(t, "Participation", cert.Template.TemplateName)

	stats, err := GetSerialStats(db, 2025)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "PART", stats[0].TypeCode)
	assert.Equal(t, 3, stats[0].LastSequence)
	assert.Equal(t, int64(3), stats[0].CertificatesIssued)
	assert.Equal(t, "Participation", stats[0].TemplateName)
}
