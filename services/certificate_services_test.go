package services

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"techlympics/models"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const sampleConfiguration = `{
	"canvas": {"width": 842, "height": 595},
	"elements": [
		{"id": "1", "type": "static_text", "content": "Certificate of Participation", "position": {"x": 421, "y": 100},
		 "text_anchor": "middle", "style": {"font_size": 28, "font_weight": "bold"}},
		{"id": "2", "type": "dynamic_text", "placeholder": "{{recipient_name}}", "prefix": "", "position": {"x": 421, "y": 250},
		 "text_anchor": "middle", "style": {"font_size": "24", "color": "#1a1a1a"}}
	]
}`

func TestPDFGeneratorRenderBlankPage(t *testing.T) {
	cfg, err := ParseTemplateConfiguration([]byte(sampleConfiguration))
	require.NoError(t, err)

	out, err := NewPDFGeneratorWithDir(t.TempDir()).Render("", cfg, CertificateData{RecipientName: "Siti Aminah"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

// writeBasePDF stores a one-page A4 background under <publicDir>/uploads/templates and returns its public path
func writeBasePDF(t *testing.T, publicDir, orientation string) string {
	t.Helper()
	base := fpdf.New(orientation, "pt", "A4", "")
	base.AddPage()
	base.SetFont("Helvetica", "", 12)
	base.Text(40, 40, "Techlympics")
	var buf bytes.Buffer
	require.NoError(t, base.Output(&buf))

	dir := filepath.Join(publicDir, "uploads", "templates")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	name := "base-" + orientation + ".pdf"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
	return "/uploads/templates/" + name
}

func TestPDFGeneratorUsesBasePageSize(t *testing.T) {
	publicDir := t.TempDir()
	generator := NewPDFGeneratorWithDir(publicDir)

	// no canvas in the configuration, so the default is landscape
	cfg, err := ParseTemplateConfiguration([]byte(`{"elements":[{"id":"1","type":"static_text","content":"Sijil","position":{"x":100,"y":100},"style":{"font_size":20}}]}`))
	require.NoError(t, err)

	out, err := generator.Render(writeBasePDF(t, publicDir, "P"), cfg, CertificateData{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Contains(t, string(out), "/MediaBox [0 0 595.28 841.89]")

	cfg, err = ParseTemplateConfiguration([]byte(sampleConfiguration))
	require.NoError(t, err)
	out, err = generator.Render(writeBasePDF(t, publicDir, "L"), cfg, CertificateData{RecipientName: "Siti Aminah"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "/MediaBox [0 0 841.89 595.28]")
}

func TestPDFGeneratorRejectsBadBasePdf(t *testing.T) {
	publicDir := t.TempDir()
	generator := NewPDFGeneratorWithDir(publicDir)
	cfg, err := ParseTemplateConfiguration([]byte(`{}`))
	require.NoError(t, err)

	dir := filepath.Join(publicDir, "uploads", "templates")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.pdf"), []byte("%PDF-1.4\nnot really a pdf"), 0o644))

	_, err = generator.Render("/uploads/templates/corrupt.pdf", cfg, CertificateData{})
	assert.ErrorIs(t, err, ErrBasePdfUnreadable)

	outside := filepath.Join(filepath.Dir(publicDir), "secret.pdf")
	_, err = generator.Render("/uploads/../../"+filepath.Base(outside), cfg, CertificateData{})
	assert.ErrorIs(t, err, ErrInvalidBasePdfPath)

	assert.True(t, ValidBasePdfPath("/uploads/templates/base.pdf"))
	assert.False(t, ValidBasePdfPath("../config/.env"))
	assert.False(t, ValidBasePdfPath("/uploads/../../etc/passwd"))
}

func TestPDFGeneratorMissingBasePdf(t *testing.T) {
	generator := NewPDFGeneratorWithDir(t.TempDir())

	_, err := generator.GenerateCertificatePDF(&models.Certificate{}, &models.CertTemplate{})
	assert.ErrorIs(t, err, ErrMissingBasePdf)

	_, err = generator.GenerateCertificatePDF(&models.Certificate{}, &models.CertTemplate{BasePdfPath: "/uploads/templates/none.pdf"})
	assert.ErrorIs(t, err, ErrBasePdfUnreadable)
}

func TestDuplicateTemplate(t *testing.T) {
	db := setupTestDB(t)
	service := NewCertificateServiceWith(db, NewPDFGeneratorWithDir(t.TempDir()), t.TempDir())

	original := models.CertTemplate{
		TemplateName:  "Winner",
		Configuration: datatypes.JSON(sampleConfiguration),
		Status:        models.TemplateStatusActive,
		TargetType:    models.TargetEventWinner,
		CreatedBy:     1,
	}
	require.NoError(t, db.Create(&original).Error)

	copied, err := service.DuplicateTemplate(original.ID, 7)
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, copied.ID)
	assert.Equal(t, "Winner (Copy)", copied.TemplateName)
	assert.Equal(t, uint(7), copied.CreatedBy)
	assert.Equal(t, models.TargetEventWinner, copied.TargetType)
	assert.JSONEq(t, sampleConfiguration, string(copied.Configuration))
}

func TestIssueCertificateWithoutBasePdf(t *testing.T) {
	db := setupTestDB(t)
	service := NewCertificateServiceWith(db, NewPDFGeneratorWithDir(t.TempDir()), t.TempDir())

	template := models.CertTemplate{TemplateName: "General", Status: models.TemplateStatusActive, TargetType: models.TargetGeneral}
	require.NoError(t, db.Create(&template).Error)

	cert, err := service.Issue(&template, CertificateInput{RecipientName: "Ali"}, 1)
	require.NoError(t, err)
	require.NotNil(t, cert.SerialNumber)
	assert.True(t, ValidateSerialNumber(*cert.SerialNumber))
	assert.Equal(t, models.CertificateDraft, cert.Status)
	assert.Equal(t, "PARTICIPANT", cert.RecipientType)
	assert.NotEmpty(t, cert.UniqueCode)

	template.Status = models.TemplateStatusInactive
	_, err = service.Issue(&template, CertificateInput{RecipientName: "Abu"}, 1)
	assert.ErrorIs(t, err, ErrTemplateInactive)
}

func TestRenderZipAndCleanup(t *testing.T) {
	db := setupTestDB(t)
	uploads := t.TempDir()
	publicDir := t.TempDir()

	// A rendered blank page stands in for the template background
	cfg, err := ParseTemplateConfiguration([]byte(`{}`))
	require.NoError(t, err)
	base, err := NewPDFGeneratorWithDir(publicDir).Render("", cfg, CertificateData{})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(publicDir, "uploads", "templates"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "uploads", "templates", "base.pdf"), base, 0o644))

	service := NewCertificateServiceWith(db, NewPDFGeneratorWithDir(publicDir), uploads)
	template := models.CertTemplate{
		TemplateName:  "Participation",
		BasePdfPath:   "/uploads/templates/base.pdf",
		Configuration: datatypes.JSON(sampleConfiguration),
		Status:        models.TemplateStatusActive,
		TargetType:    models.TargetEventParticipant,
	}
	require.NoError(t, db.Create(&template).Error)

	var issued []models.Certificate
	for _, name := range []string{"Ali", "Abu", "Siti"} {
		cert, err := service.Issue(&template, CertificateInput{RecipientName: name}, 1)
		require.NoError(t, err)
		assert.Equal(t, models.CertificateGenerated, cert.Status)
		assert.FileExists(t, filepath.Join(uploads, filepath.Base(cert.FilePath)))
		cert.Template = &template
		issued = append(issued, *cert)
	}

	archive, err := service.RenderZip(context.Background(), issued)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	assert.Len(t, zr.File, 3)

	orphan := filepath.Join(uploads, "cert-99-1-abcdef.pdf")
	require.NoError(t, os.WriteFile(orphan, []byte("%PDF"), 0o644))

	listed, err := CleanupCertificateFiles(db, uploads, true)
	require.NoError(t, err)
	assert.Equal(t, []string{orphan}, listed)
	assert.FileExists(t, orphan)

	removed, err := CleanupCertificateFiles(db, uploads, false)
	require.NoError(t, err)
	assert.Equal(t, []string{orphan}, removed)
	assert.NoFileExists(t, orphan)
}

func TestUniqueEntryName(t *testing.T) {
	used := map[string]bool{}
	names := []string{
		uniqueEntryName(used, "Sijil_Ali_X.pdf"),
		uniqueEntryName(used, "Sijil_Ali_X.pdf"),
		uniqueEntryName(used, "Sijil_Ali_X.pdf"),
		uniqueEntryName(used, "Sijil_Ali_X_1.pdf"),
	}
	assert.Equal(t, []string{"Sijil_Ali_X.pdf", "Sijil_Ali_X_1.pdf", "Sijil_Ali_X_2.pdf", "Sijil_Ali_X_1_1.pdf"}, names)
}

func TestIssueForEventParticipants(t *testing.T) {
	db := setupTestDB(t)
	f := createEventFixture(t, db, time.Now())
	_, err := SyncEventAttendance(db, f.Event.ID)
	require.NoError(t, err)

	var present models.AttendanceContestant
	require.NoError(t, db.Where("event_id = ? AND contestant_id = ?", f.Event.ID, f.Contestants[0].ID).First(&present).Error)
	_, err = MarkAttendance(db, f.Event.ID, "contestant", []uint{present.ID}, true, time.Now())
	require.NoError(t, err)

	service := NewCertificateServiceWith(db, NewPDFGeneratorWithDir(t.TempDir()), t.TempDir())
	template := models.CertTemplate{TemplateName: "Participation", Status: models.TemplateStatusActive, TargetType: models.TargetEventParticipant}
	require.NoError(t, db.Create(&template).Error)

	_, err = service.IssueForEventParticipants(&template, 1)
	assert.ErrorIs(t, err, ErrTemplateWithoutEvent)

	template.EventID = &f.Event.ID
	result, err := service.IssueForEventParticipants(&template, 1)
	require.NoError(t, err)
	require.Len(t, result.Issued, 1)
	assert.Equal(t, f.Contestants[0].Name, result.Issued[0].RecipientName)
	assert.Equal(t, f.Contestants[0].IC, result.Issued[0].ICNumber)
	assert.Equal(t, f.Contingent.Name, result.Issued[0].ContingentName)
	assert.Equal(t, f.Team.Name, result.Issued[0].TeamName)
	assert.Equal(t, f.Contest.Name, result.Issued[0].ContestName)

	result, err = service.IssueForEventParticipants(&template, 1)
	require.NoError(t, err)
	assert.Empty(t, result.Issued)
	assert.Equal(t, 1, result.Skipped)
}

func TestWinnerAwardTitle(t *testing.T) {
	assert.Equal(t, "TEMPAT PERTAMA", WinnerAwardTitle(1))
	assert.Equal(t, "TEMPAT KE-2", WinnerAwardTitle(2))
	assert.Equal(t, "TEMPAT KE-10", WinnerAwardTitle(10))
}

func TestIssueForEventWinners(t *testing.T) {
	db := setupTestDB(t)
	f := createEventFixture(t, db, time.Now())
	team := syncedAttendanceTeam(t, db, f)
	createJudgingTemplate(t, db, true)

	publicDir, uploads := t.TempDir(), t.TempDir()
	service := NewCertificateServiceWith(db, NewPDFGeneratorWithDir(publicDir), uploads)
	template := models.CertTemplate{
		TemplateName:  "Winners",
		BasePdfPath:   writeBasePDF(t, publicDir, "L"),
		Configuration: datatypes.JSON(sampleConfiguration),
		Status:        models.TemplateStatusActive,
		TargetType:    models.TargetEventParticipant,
		EventID:       &f.Event.ID,
	}
	require.NoError(t, db.Create(&template).Error)

	_, err := service.IssueForEventWinners(&template, 1)
	assert.ErrorIs(t, err, ErrTemplateNotForWinners)

	template.TargetType = models.TargetEventWinner
	require.NoError(t, db.Save(&template).Error)

	t.Run("unjudged teams are not winners", func(t *testing.T) {
		result, err := service.IssueForEventWinners(&template, 1)
		require.NoError(t, err)
		assert.Empty(t, result.Issued)
		assert.Empty(t, result.Updated)
	})

	session, err := StartJudgingSession(db, f.EventContest.ID, team.ID, nil, nil)
	require.NoError(t, err)
	_, err = CompleteJudgingSession(db, session.ID, "")
	require.NoError(t, err)

	var first []models.Certificate
	t.Run("members of a placed team", func(t *testing.T) {
		result, err := service.IssueForEventWinners(&template, 1)
		require.NoError(t, err)
		require.Len(t, result.Issued, 2)
		assert.Empty(t, result.Failed)
		for _, cert := range result.Issued {
			assert.Equal(t, "TEMPAT PERTAMA", cert.AwardTitle)
			require.NotNil(t, cert.Position)
			assert.Equal(t, 1, *cert.Position)
			assert.Equal(t, f.Team.Name, cert.TeamName)
			assert.Equal(t, f.Contingent.Name, cert.ContingentName)
			assert.Equal(t, models.CertificateGenerated, cert.Status)
			assert.FileExists(t, filepath.Join(uploads, filepath.Base(cert.FilePath)))
			require.NotNil(t, cert.SerialNumber)
		}
		first = result.Issued
	})

	t.Run("rerun keeps serial numbers", func(t *testing.T) {
		result, err := service.IssueForEventWinners(&template, 1)
		require.NoError(t, err)
		assert.Empty(t, result.Issued)
		require.Len(t, result.Updated, 2)

		serials := map[uint]string{}
		for _, cert := range first {
			serials[cert.ID] = *cert.SerialNumber
		}
		for _, cert := range result.Updated {
			require.NotNil(t, cert.SerialNumber)
			assert.Equal(t, serials[cert.ID], *cert.SerialNumber)
		}

		var count int64
		require.NoError(t, db.Model(&models.Certificate{}).Where("template_id = ?", template.ID).Count(&count).Error)
		assert.EqualValues(t, 2, count)
	})

	t.Run("range excludes the rank", func(t *testing.T) {
		start, end := 2, 3
		template.WinnerRangeStart = &start
		template.WinnerRangeEnd = &end
		result, err := service.IssueForEventWinners(&template, 1)
		require.NoError(t, err)
		assert.Empty(t, result.Issued)
		assert.Empty(t, result.Updated)
	})
}
