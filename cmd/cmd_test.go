package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"techlympics/config"
	"techlympics/database"
	"techlympics/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func useTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenTestDB()
	require.NoError(t, err)

	previous := openDB
	openDB = func() (*gorm.DB, error) { return db, nil }
	t.Cleanup(func() {
		openDB = previous
		cleanupDryRun = false
		cleanupDir = ""
	})
	return db
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestCleanupCerts(t *testing.T) {
	db := useTestDB(t)
	dir := t.TempDir()

	template := models.CertTemplate{TemplateName: "Participation", Status: models.TemplateStatusActive, TargetType: models.TargetGeneral}
	require.NoError(t, db.Create(&template).Error)
	cert := models.Certificate{
		TemplateID:    template.ID,
		RecipientName: "Aina",
		UniqueCode:    "CERT-KEEP",
		FilePath:      "/uploads/certificates/cert-keep.pdf",
		Status:        models.CertificateGenerated,
	}
	require.NoError(t, db.Create(&cert).Error)

	keep := filepath.Join(dir, "cert-keep.pdf")
	orphan := filepath.Join(dir, "cert-orphan.pdf")
	other := filepath.Join(dir, "template.pdf")
	writeFile(t, keep)
	writeFile(t, orphan)
	writeFile(t, other)

	t.Run("dry run lists without deleting", func(t *testing.T) {
		out := run(t, "cleanup-certs", "--dry-run", "--dir", dir)
		assert.Contains(t, out, orphan)
		assert.NotContains(t, out, keep)
		assert.Contains(t, out, "Would remove 1 orphaned certificate file(s)")
		assert.FileExists(t, orphan)
	})

	t.Run("removes orphans only", func(t *testing.T) {
		cleanupDryRun = false
		out := run(t, "cleanup-certs", "--dry-run=false", "--dir", dir)
		assert.Contains(t, out, "Removed 1 orphaned certificate file(s)")
		assert.NoFileExists(t, orphan)
		assert.FileExists(t, keep)
		assert.FileExists(t, other)
	})
}

func TestSeedCreatesAdmin(t *testing.T) {
	db := useTestDB(t)

	out := run(t, "seed")
	assert.Contains(t, out, "Seed complete")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	run(t, "seed")
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMigrate(t *testing.T) {
	useTestDB(t)
	assert.Contains(t, run(t, "migrate"), "Migration complete")
}

func TestServeRefusesDefaultSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Cleanup(func() { config.Environment = "development" })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"serve"})
	err := rootCmd.Execute()
	assert.ErrorIs(t, err, config.ErrInsecureJWTSecret)
}
