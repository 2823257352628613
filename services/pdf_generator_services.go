package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"techlympics/config"
	"techlympics/models"
	"techlympics/utils"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
)

var (
	ErrMissingBasePdf     = errors.New("template base PDF path not found")
	ErrBasePdfUnreadable  = errors.New("template base PDF cannot be read")
	ErrInvalidBasePdfPath = errors.New("template base PDF path leaves the public directory")
)

// PDFGenerator composites certificate text onto the template's base PDF
type PDFGenerator struct {
	publicDir string
}

func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{publicDir: config.PublicDir}
}

// NewPDFGeneratorWithDir resolves base PDF paths against another public directory
func NewPDFGeneratorWithDir(publicDir string) *PDFGenerator {
	return &PDFGenerator{publicDir: publicDir}
}

// ResolvePublicPath maps a stored "/uploads/..." path onto the public directory
func (g *PDFGenerator) ResolvePublicPath(storedPath string) (string, error) {
	return containedPath(g.publicDir, storedPath)
}

// ValidBasePdfPath reports whether a stored base PDF path stays inside the public directory
func ValidBasePdfPath(storedPath string) bool {
	_, err := containedPath(string(filepath.Separator)+"public", storedPath)
	return err == nil
}

func containedPath(root, storedPath string) (string, error) {
	root = filepath.Clean(root)
	full := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(storedPath, "/")))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidBasePdfPath, storedPath)
	}
	return full, nil
}

// Render builds the PDF in memory. The page takes the size of the base PDF's first page;
// an empty basePdfPath renders on a blank page of the canvas size.
func (g *PDFGenerator) Render(basePdfPath string, cfg *TemplateConfiguration, data CertificateData) (out []byte, err error) {
	width := float64(cfg.Canvas.Width)
	height := float64(cfg.Canvas.Height)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr:        "pt",
		OrientationStr: "P",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	if basePdfPath == "" {
		pdf.AddPage()
	} else {
		fullPath, pathErr := g.ResolvePublicPath(basePdfPath)
		if pathErr != nil {
			return nil, pathErr
		}
		if _, statErr := os.Stat(fullPath); statErr != nil {
			return nil, fmt.Errorf("%w: %s", ErrBasePdfUnreadable, basePdfPath)
		}

		// The importer panics on malformed input
		defer func() {
			if r := recover(); r != nil {
				out = nil
				err = fmt.Errorf("%w: %v", ErrBasePdfUnreadable, r)
			}
		}()

		importer := gofpdi.NewImporter()
		tpl := importer.ImportPage(pdf, fullPath, 1, "/MediaBox")
		if box, ok := importer.GetPageSizes()[1]["/MediaBox"]; ok && box["w"] > 0 && box["h"] > 0 {
			width, height = box["w"], box["h"]
		}
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
		importer.UseImportedTemplate(pdf, tpl, 0, 0, width, height)
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	measure := func(text string, bold bool, size float64) float64 {
		pdf.SetFont("Helvetica", fontStyle(bold), size)
		return pdf.GetStringWidth(tr(text))
	}

	for _, run := range LayoutElements(cfg, data, measure) {
		pdf.SetFont("Helvetica", fontStyle(run.Bold), run.FontSize)
		pdf.SetTextColor(run.Color.R, run.Color.G, run.Color.B)
		pdf.Text(run.X, run.Y, tr(run.Text))
	}

	if pdf.Err() {
		return nil, fmt.Errorf("render certificate: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

// GenerateCertificatePDF renders a stored certificate with its template
func (g *PDFGenerator) GenerateCertificatePDF(cert *models.Certificate, template *models.CertTemplate) ([]byte, error) {
	if template.BasePdfPath == "" {
		return nil, ErrMissingBasePdf
	}
	cfg, err := ParseTemplateConfiguration(template.Configuration)
	if err != nil {
		return nil, err
	}
	return g.Render(template.BasePdfPath, cfg, CertificateDataFrom(cert))
}

// SaveToUploads writes a rendered PDF under the uploads directory and returns its public path
func SaveToUploads(uploadsDir string, templateID uint, pdfBytes []byte) (string, error) {
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads directory: %w", err)
	}
	name := utils.CertificateFileName(templateID, time.Now())
	if err := os.WriteFile(filepath.Join(uploadsDir, name), pdfBytes, 0o644); err != nil {
		return "", fmt.Errorf("write certificate file: %w", err)
	}
	return "/uploads/certificates/" + name, nil
}

// CertificateDataFrom maps a certificate row onto placeholder values
func CertificateDataFrom(cert *models.Certificate) CertificateData {
	data := CertificateData{
		RecipientName:  cert.RecipientName,
		ICNumber:       cert.ICNumber,
		ContingentName: cert.ContingentName,
		TeamName:       cert.TeamName,
		ContestName:    cert.ContestName,
		AwardTitle:     cert.AwardTitle,
		UniqueCode:     cert.UniqueCode,
	}
	if cert.SerialNumber != nil {
		data.SerialNumber = *cert.SerialNumber
	}
	if cert.Position != nil {
		data.Position = fmt.Sprintf("%d", *cert.Position)
	}
	if cert.IssuedAt != nil {
		data.IssueDate = *cert.IssuedAt
	}
	return data
}

// CertificateFileName is the download name <template>_<recipient>_<uniqueCode>.pdf
func CertificateFileName(templateName, recipientName, uniqueCode string) string {
	return fmt.Sprintf("%s_%s_%s.pdf", utils.SanitizeFilename(templateName), utils.SanitizeFilename(recipientName), uniqueCode)
}
