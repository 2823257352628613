package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"techlympics/config"
	"techlympics/metrics"
	"techlympics/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidTargetType = errors.New("invalid target type")

// SerialTypeCodes maps a certificate target type onto the code printed in serial numbers
var SerialTypeCodes = map[string]string{
	models.TargetGeneral:               "GEN",
	models.TargetEventParticipant:      "PART",
	models.TargetEventWinner:           "WIN",
	models.TargetNonContestParticipant: "NCP",
	models.TargetQuizParticipant:       "QPART",
	models.TargetQuizWinner:            "QWIN",
}

// ParsedSerial is the decoded form of MT25/GEN/T5/000001
type ParsedSerial struct {
	Prefix     string `json:"prefix"`
	Year       int    `json:"year"`
	YearShort  string `json:"yearShort"`
	TypeCode   string `json:"typeCode"`
	TemplateID uint   `json:"templateId"`
	Sequence   int    `json:"sequence"`
}

// SerialStat summarises one serial counter
type SerialStat struct {
	Year               int    `json:"year"`
	TargetType         string `json:"targetType"`
	TypeCode           string `json:"typeCode"`
	LastSequence       int    `json:"lastSequence"`
	TemplateID         uint   `json:"templateId"`
	TemplateName       string `json:"templateName"`
	CertificatesIssued int64  `json:"certificatesIssued"`
}

func serialPrefix() string {
	if config.SerialPrefix == "" {
		return "MT"
	}
	return config.SerialPrefix
}

func typeCodeFor(targetType string) (string, error) {
	code, ok := SerialTypeCodes[targetType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidTargetType, targetType)
	}
	return code, nil
}

func resolveYear(year int) int {
	if year <= 0 {
		return time.Now().Year()
	}
	return year
}

// FormatSerialNumber renders <prefix><yy>/<TYPE>/T<templateID>/<000001>
func FormatSerialNumber(year int, typeCode string, templateID uint, sequence int) string {
	yearShort := fmt.Sprintf("%02d", year%100)
	return fmt.Sprintf("%s%s/%s/T%d/%06d", serialPrefix(), yearShort, typeCode, templateID, sequence)
}

// GenerateSerialNumber reserves the next sequence for (year, template, target type) and formats it.
// The counter row is locked for the duration of the transaction.
func GenerateSerialNumber(db *gorm.DB, templateID uint, targetType string, year int) (string, error) {
	typeCode, err := typeCodeFor(targetType)
	if err != nil {
		return "", err
	}
	year = resolveYear(year)

	var serial string
	err = db.Transaction(func(tx *gorm.DB) error {
		var record models.CertificateSerial
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("year = ? AND template_id = ? AND target_type = ?", year, templateID, targetType).
			Limit(1).
			Find(&record)
		if result.Error != nil {
			return fmt.Errorf("lock serial counter: %w", result.Error)
		}

		next := 1
		if result.RowsAffected == 0 {
			record = models.CertificateSerial{
				Year:         year,
				TemplateID:   templateID,
				TargetType:   targetType,
				TypeCode:     typeCode,
				LastSequence: 1,
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("create serial counter: %w", err)
			}
		} else {
			next = record.LastSequence + 1
			if err := tx.Model(&record).Update("last_sequence", next).Error; err != nil {
				return fmt.Errorf("increment serial counter: %w", err)
			}
		}

		serial = FormatSerialNumber(year, typeCode, templateID, next)
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.SerialNumbersIssued.WithLabelValues(typeCode).Inc()
	return serial, nil
}

// GetCurrentSequence returns the last issued sequence, 0 when none was issued
func GetCurrentSequence(db *gorm.DB, templateID uint, targetType string, year int) (int, error) {
	var record models.CertificateSerial
	result := db.Where("year = ? AND template_id = ? AND target_type = ?", resolveYear(year), templateID, targetType).
		Limit(1).
		Find(&record)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, nil
	}
	return record.LastSequence, nil
}

// PreviewNextSerialNumber formats the serial the next generation would return without reserving it
func PreviewNextSerialNumber(db *gorm.DB, templateID uint, targetType string, year int) (string, error) {
	typeCode, err := typeCodeFor(targetType)
	if err != nil {
		return "", err
	}
	year = resolveYear(year)
	current, err := GetCurrentSequence(db, templateID, targetType, year)
	if err != nil {
		return "", err
	}
	return FormatSerialNumber(year, typeCode, templateID, current+1), nil
}

func serialPattern() *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(serialPrefix()) + `\d{2}/(GEN|PART|WIN|NCP|QPART|QWIN)/T\d+/\d{6}$`)
}

// ValidateSerialNumber checks the serial number format only
func ValidateSerialNumber(serialNumber string) bool {
	return serialPattern().MatchString(serialNumber)
}

// ParseSerialNumber splits a serial number into its parts, returning false when malformed
func ParseSerialNumber(serialNumber string) (*ParsedSerial, bool) {
	parts := strings.Split(serialNumber, "/")
	if len(parts) != 4 || len(parts[0]) < 2 {
		return nil, false
	}

	prefixYear := parts[0]
	yearShort := prefixYear[len(prefixYear)-2:]
	yy, err := strconv.Atoi(yearShort)
	if err != nil {
		return nil, false
	}

	if !strings.HasPrefix(parts[2], "T") {
		return nil, false
	}
	templateID, err := strconv.ParseUint(parts[2][1:], 10, 64)
	if err != nil {
		return nil, false
	}

	sequence, err := strconv.Atoi(parts[3])
	if err != nil {
		return nil, false
	}

	return &ParsedSerial{
		Prefix:     prefixYear[:len(prefixYear)-2],
		Year:       2000 + yy,
		YearShort:  yearShort,
		TypeCode:   parts[1],
		TemplateID: uint(templateID),
		Sequence:   sequence,
	}, true
}

// SerialNumberExists reports whether a certificate carries the serial number
func SerialNumberExists(db *gorm.DB, serialNumber string) (bool, error) {
	var count int64
	if err := db.Model(&models.Certificate{}).Where("serial_number = ?", serialNumber).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetCertificateBySerial loads a certificate and its template by serial number
func GetCertificateBySerial(db *gorm.DB, serialNumber string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := db.Preload("Template").Where("serial_number = ?", serialNumber).First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// GetTemplateSerials lists every counter of a template, newest year first
func GetTemplateSerials(db *gorm.DB, templateID uint) ([]models.CertificateSerial, error) {
	var serials []models.CertificateSerial
	err := db.Where("template_id = ?", templateID).Order("year DESC, target_type").Find(&serials).Error
	return serials, err
}

// ResetSequence sets a counter back to zero; year 0 means the current year
func ResetSequence(db *gorm.DB, templateID uint, targetType string, year int) error {
	if _, err := typeCodeFor(targetType); err != nil {
		return err
	}
	year = resolveYear(year)
	return db.Model(&models.CertificateSerial{}).
		Where("year = ? AND template_id = ? AND target_type = ?", year, templateID, targetType).
		Update("last_sequence", 0).Error
}

// GetSerialStats returns every counter of the year with the number of certificates issued under it
func GetSerialStats(db *gorm.DB, year int) ([]SerialStat, error) {
	year = resolveYear(year)

	var serials []models.CertificateSerial
	if err := db.Where("year = ?", year).Order("target_type").Find(&serials).Error; err != nil {
		return nil, err
	}

	stats := make([]SerialStat, 0, len(serials))
	for _, s := range serials {
		stat := SerialStat{
			Year:         s.Year,
			TargetType:   s.TargetType,
			TypeCode:     s.TypeCode,
			LastSequence: s.LastSequence,
			TemplateID:   s.TemplateID,
		}

		var template models.CertTemplate
		if err := db.Select("template_name").Where("id = ?", s.TemplateID).Limit(1).Find(&template).Error; err == nil {
			stat.TemplateName = template.TemplateName
		}

		pattern := fmt.Sprintf("%s%02d/%s/T%d/%%", serialPrefix(), s.Year%100, s.TypeCode, s.TemplateID)
		if err := db.Model(&models.Certificate{}).Where("serial_number LIKE ?", pattern).Count(&stat.CertificatesIssued).Error; err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, nil
}
