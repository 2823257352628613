package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"techlympics/config"
	"techlympics/logger"
	"techlympics/metrics"
	"techlympics/models"
	"techlympics/utils"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var ErrTemplateInactive = errors.New("certificate template is inactive")

// BulkRenderLimit bounds the PDFs rendered concurrently for a zip download
const BulkRenderLimit = 4

// CertificateInput describes one recipient of a generated certificate
type CertificateInput struct {
	RecipientName  string `json:"recipientName" binding:"required"`
	RecipientEmail string `json:"recipientEmail"`
	RecipientType  string `json:"recipientType"`
	ICNumber       string `json:"icNumber" gorm:"column:ic_number"`
	ContingentName string `json:"contingentName"`
	TeamName       string `json:"teamName"`
	ContestName    string `json:"contestName"`
	AwardTitle     string `json:"awardTitle"`
	Position       *int   `json:"position"`
}

// CertificateService issues certificates from templates
type CertificateService struct {
	db         *gorm.DB
	generator  *PDFGenerator
	uploadsDir string
}

func NewCertificateService(db *gorm.DB) *CertificateService {
	return &CertificateService{db: db, generator: NewPDFGenerator(), uploadsDir: config.UploadsDir}
}

// NewCertificateServiceWith overrides the generator and uploads directory
func NewCertificateServiceWith(db *gorm.DB, generator *PDFGenerator, uploadsDir string) *CertificateService {
	return &CertificateService{db: db, generator: generator, uploadsDir: uploadsDir}
}

// DuplicateTemplate copies a template under "<name> (Copy)" owned by userID
func (s *CertificateService) DuplicateTemplate(templateID, userID uint) (*models.CertTemplate, error) {
	var original models.CertTemplate
	if err := s.db.First(&original, templateID).Error; err != nil {
		return nil, err
	}

	copied := models.CertTemplate{
		TemplateName:     original.TemplateName + " (Copy)",
		BasePdfPath:      original.BasePdfPath,
		Configuration:    original.Configuration,
		Status:           original.Status,
		TargetType:       original.TargetType,
		EventID:          original.EventID,
		QuizID:           original.QuizID,
		WinnerRangeStart: original.WinnerRangeStart,
		WinnerRangeEnd:   original.WinnerRangeEnd,
		CreatedBy:        userID,
	}
	if err := s.db.Create(&copied).Error; err != nil {
		return nil, err
	}
	return &copied, nil
}

// Issue creates a certificate row with a unique code and serial number, renders it and stores the file
func (s *CertificateService) Issue(template *models.CertTemplate, input CertificateInput, userID uint) (*models.Certificate, error) {
	if template.Status != models.TemplateStatusActive {
		return nil, ErrTemplateInactive
	}

	recipientType := input.RecipientType
	if recipientType == "" {
		recipientType = "PARTICIPANT"
	}
	now := time.Now()
	cert := models.Certificate{
		TemplateID:     template.ID,
		RecipientName:  input.RecipientName,
		RecipientEmail: input.RecipientEmail,
		RecipientType:  recipientType,
		ICNumber:       input.ICNumber,
		ContingentName: input.ContingentName,
		TeamName:       input.TeamName,
		ContestName:    input.ContestName,
		AwardTitle:     input.AwardTitle,
		Position:       input.Position,
		UniqueCode:     utils.GenerateUniqueCode(),
		Status:         models.CertificateDraft,
		IssuedAt:       &now,
		CreatedBy:      userID,
	}

	serial, err := GenerateSerialNumber(s.db, template.ID, template.TargetType, now.Year())
	if err != nil {
		return nil, fmt.Errorf("generate serial number: %w", err)
	}
	cert.SerialNumber = &serial

	if err := s.db.Create(&cert).Error; err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	if err := s.store(template, &cert); err != nil {
		return &cert, err
	}
	return &cert, nil
}

// store renders cert and records the generated file. Templates without a base PDF are left as drafts.
func (s *CertificateService) store(template *models.CertTemplate, cert *models.Certificate) error {
	if template.BasePdfPath == "" {
		return nil
	}

	pdfBytes, err := s.generator.GenerateCertificatePDF(cert, template)
	if err != nil {
		return fmt.Errorf("render certificate: %w", err)
	}
	filePath, err := SaveToUploads(s.uploadsDir, template.ID, pdfBytes)
	if err != nil {
		return err
	}

	if err := s.db.Model(cert).Updates(map[string]interface{}{
		"file_path": filePath,
		"status":    models.CertificateGenerated,
	}).Error; err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	cert.FilePath = filePath
	cert.Status = models.CertificateGenerated
	metrics.CertificatesGenerated.WithLabelValues(template.TargetType).Inc()
	return nil
}

// Render renders a stored certificate in memory
func (s *CertificateService) Render(cert *models.Certificate) ([]byte, error) {
	if cert.Template == nil {
		var template models.CertTemplate
		if err := s.db.First(&template, cert.TemplateID).Error; err != nil {
			return nil, fmt.Errorf("load template: %w", err)
		}
		cert.Template = &template
	}
	return s.generator.GenerateCertificatePDF(cert, cert.Template)
}

// RenderZip renders the certificates concurrently and packs them into one zip archive
func (s *CertificateService) RenderZip(ctx context.Context, certs []models.Certificate) ([]byte, error) {
	rendered := make([][]byte, len(certs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(BulkRenderLimit)
	for i := range certs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := s.Render(&certs[i])
			if err != nil {
				return fmt.Errorf("certificate %d: %w", certs[i].ID, err)
			}
			rendered[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]bool, len(certs))
	for i, cert := range certs {
		templateName := ""
		if cert.Template != nil {
			templateName = cert.Template.TemplateName
		}
		name := uniqueEntryName(used, CertificateFileName(templateName, cert.RecipientName, cert.UniqueCode))

		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(rendered[i]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// uniqueEntryName appends _1, _2, ... to name until it is not in used, then records it
func uniqueEntryName(used map[string]bool, name string) string {
	candidate := name
	stem := strings.TrimSuffix(name, ".pdf")
	for n := 1; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d.pdf", stem, n)
	}
	used[candidate] = true
	return candidate
}

var ErrTemplateWithoutEvent = errors.New("certificate template is not linked to an event")

// BulkIssueResult reports a bulk issue run
type BulkIssueResult struct {
	Issued  []models.Certificate `json:"issued"`
	Updated []models.Certificate `json:"updated,omitempty"`
	Skipped int                  `json:"skipped"`
	Failed  []string             `json:"failed"`
}

// EventParticipantInputs lists the contestants marked present at an event as certificate recipients
func EventParticipantInputs(db *gorm.DB, eventID uint) ([]CertificateInput, error) {
	var inputs []CertificateInput
	err := db.Table("attendance_contestants AS ac").
		Select("c.name AS recipient_name, c.email AS recipient_email, ac.ic AS ic_number, cg.name AS contingent_name, t.name AS team_name, ct.name AS contest_name").
		Joins("JOIN contestants c ON c.id = ac.contestant_id").
		Joins("JOIN contingents cg ON cg.id = ac.contingent_id").
		Joins("LEFT JOIN teams t ON t.id = ac.team_id").
		Joins("LEFT JOIN contests ct ON ct.id = t.contest_id").
		Where("ac.event_id = ? AND ac.attendance_status = ?", eventID, models.AttendancePresent).
		Order("cg.name, c.name").
		Scan(&inputs).Error
	if err != nil {
		return nil, fmt.Errorf("list event participants: %w", err)
	}
	for i := range inputs {
		inputs[i].RecipientType = "PARTICIPANT"
	}
	return inputs, nil
}

// IssueForEventParticipants issues the template to every present contestant of its event
// who does not hold a certificate from it yet
func (s *CertificateService) IssueForEventParticipants(template *models.CertTemplate, userID uint) (*BulkIssueResult, error) {
	if template.EventID == nil {
		return nil, ErrTemplateWithoutEvent
	}
	if template.Status != models.TemplateStatusActive {
		return nil, ErrTemplateInactive
	}

	inputs, err := EventParticipantInputs(s.db, *template.EventID)
	if err != nil {
		return nil, err
	}
	var issuedICs []string
	if err := s.db.Model(&models.Certificate{}).Where("template_id = ? AND ic_number <> ''", template.ID).
		Pluck("ic_number", &issuedICs).Error; err != nil {
		return nil, err
	}
	issued := make(map[string]bool, len(issuedICs))
	for _, ic := range issuedICs {
		issued[ic] = true
	}

	result := &BulkIssueResult{Issued: []models.Certificate{}, Failed: []string{}}
	for _, input := range inputs {
		if issued[input.ICNumber] {
			result.Skipped++
			continue
		}
		cert, err := s.Issue(template, input, userID)
		if err != nil {
			logger.Log.WithError(err).WithField("ic", input.ICNumber).Warn("failed to issue certificate")
			result.Failed = append(result.Failed, input.RecipientName)
			continue
		}
		issued[input.ICNumber] = true
		result.Issued = append(result.Issued, *cert)
	}
	return result, nil
}

var ErrTemplateNotForWinners = errors.New("certificate template does not target event winners")

// Winner range used when a template leaves it unset
const (
	DefaultWinnerRangeStart = 1
	DefaultWinnerRangeEnd   = 3
)

// WinnerAwardTitle names the placing printed on a winner certificate
func WinnerAwardTitle(rank int) string {
	if rank == 1 {
		return "TEMPAT PERTAMA"
	}
	return fmt.Sprintf("TEMPAT KE-%d", rank)
}

func winnerRange(template *models.CertTemplate) (int, int) {
	start, end := DefaultWinnerRangeStart, DefaultWinnerRangeEnd
	if template.WinnerRangeStart != nil && *template.WinnerRangeStart > 0 {
		start = *template.WinnerRangeStart
	}
	if template.WinnerRangeEnd != nil && *template.WinnerRangeEnd >= start {
		end = *template.WinnerRangeEnd
	}
	return start, end
}

// EventWinnerInputs lists the members of every team ranked start..end on the
// scoreboards of the event's contests. Unscored teams are never winners.
func EventWinnerInputs(db *gorm.DB, eventID uint, start, end int) ([]CertificateInput, error) {
	var eventContests []models.EventContest
	if err := db.Where("event_id = ?", eventID).Order("id").Find(&eventContests).Error; err != nil {
		return nil, err
	}

	inputs := []CertificateInput{}
	for _, ec := range eventContests {
		board, err := GetScoreboard(db, eventID, ec.ContestID, nil)
		if err != nil {
			return nil, fmt.Errorf("scoreboard for contest %d: %w", ec.ContestID, err)
		}
		for _, entry := range board.Results {
			if entry.Rank < start || entry.Rank > end {
				continue
			}
			var members []models.TeamMember
			if err := db.Preload("Contestant").Where("team_id = ?", entry.Team.ID).Find(&members).Error; err != nil {
				return nil, err
			}
			sort.Slice(members, func(i, j int) bool {
				return memberName(members[i]) < memberName(members[j])
			})
			for _, m := range members {
				if m.Contestant == nil {
					continue
				}
				position := entry.Rank
				inputs = append(inputs, CertificateInput{
					RecipientName:  m.Contestant.Name,
					RecipientEmail: m.Contestant.Email,
					RecipientType:  "WINNER",
					ICNumber:       m.Contestant.IC,
					ContingentName: entry.Contingent.Name,
					TeamName:       entry.Team.Name,
					ContestName:    entry.ContestName,
					AwardTitle:     WinnerAwardTitle(entry.Rank),
					Position:       &position,
				})
			}
		}
	}
	return inputs, nil
}

func memberName(m models.TeamMember) string {
	if m.Contestant == nil {
		return ""
	}
	return m.Contestant.Name
}

// IssueForEventWinners issues a winner template to the members of the teams placed within
// its winner range. A recipient already holding the same award from the template keeps its
// serial number and has the certificate refreshed.
func (s *CertificateService) IssueForEventWinners(template *models.CertTemplate, userID uint) (*BulkIssueResult, error) {
	if template.EventID == nil {
		return nil, ErrTemplateWithoutEvent
	}
	if template.TargetType != models.TargetEventWinner {
		return nil, ErrTemplateNotForWinners
	}
	if template.Status != models.TemplateStatusActive {
		return nil, ErrTemplateInactive
	}

	start, end := winnerRange(template)
	inputs, err := EventWinnerInputs(s.db, *template.EventID, start, end)
	if err != nil {
		return nil, err
	}

	result := &BulkIssueResult{Issued: []models.Certificate{}, Updated: []models.Certificate{}, Failed: []string{}}
	for _, input := range inputs {
		var existing models.Certificate
		found := s.db.Where("template_id = ? AND ic_number = ? AND award_title = ?", template.ID, input.ICNumber, input.AwardTitle).
			Limit(1).Find(&existing)
		if found.Error != nil {
			return nil, found.Error
		}

		if found.RowsAffected > 0 {
			if err := s.refresh(template, &existing, input); err != nil {
				logger.Log.WithError(err).WithField("certificate_id", existing.ID).Warn("failed to refresh winner certificate")
				result.Failed = append(result.Failed, input.RecipientName)
				continue
			}
			result.Updated = append(result.Updated, existing)
			continue
		}

		cert, err := s.Issue(template, input, userID)
		if err != nil {
			logger.Log.WithError(err).WithField("ic", input.ICNumber).Warn("failed to issue winner certificate")
			result.Failed = append(result.Failed, input.RecipientName)
			continue
		}
		result.Issued = append(result.Issued, *cert)
	}
	return result, nil
}

// refresh rewrites the recipient details of an existing certificate and renders it again
func (s *CertificateService) refresh(template *models.CertTemplate, cert *models.Certificate, input CertificateInput) error {
	updates := map[string]interface{}{
		"recipient_name":  input.RecipientName,
		"recipient_email": input.RecipientEmail,
		"contingent_name": input.ContingentName,
		"team_name":       input.TeamName,
		"contest_name":    input.ContestName,
		"position":        input.Position,
	}
	if err := s.db.Model(cert).Updates(updates).Error; err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	cert.RecipientName = input.RecipientName
	cert.RecipientEmail = input.RecipientEmail
	cert.ContingentName = input.ContingentName
	cert.TeamName = input.TeamName
	cert.ContestName = input.ContestName
	cert.Position = input.Position
	return s.store(template, cert)
}

// OrphanedCertificateFiles lists generated PDFs in uploadsDir no certificate row references
func OrphanedCertificateFiles(db *gorm.DB, uploadsDir string) ([]string, error) {
	entries, err := os.ReadDir(uploadsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	if err := db.Model(&models.Certificate{}).Where("file_path <> ''").Pluck("file_path", &paths).Error; err != nil {
		return nil, err
	}
	referenced := make(map[string]bool, len(paths))
	for _, p := range paths {
		referenced[filepath.Base(p)] = true
	}

	var orphans []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "cert-") || !strings.HasSuffix(name, ".pdf") {
			continue
		}
		if !referenced[name] {
			orphans = append(orphans, filepath.Join(uploadsDir, name))
		}
	}
	return orphans, nil
}

// CleanupCertificateFiles removes orphaned PDFs unless dryRun is set and returns what was (or would be) removed
func CleanupCertificateFiles(db *gorm.DB, uploadsDir string, dryRun bool) ([]string, error) {
	orphans, err := OrphanedCertificateFiles(db, uploadsDir)
	if err != nil {
		return nil, err
	}
	if dryRun {
		return orphans, nil
	}

	removed := make([]string, 0, len(orphans))
	for _, path := range orphans {
		if err := os.Remove(path); err != nil {
			logger.Log.WithError(err).WithField("file", path).Warn("failed to remove certificate file")
			continue
		}
		removed = append(removed, path)
	}
	return removed, nil
}
