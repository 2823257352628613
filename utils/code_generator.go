package utils

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// HashcodePrefix prefixes contestant, manager and team hashcodes
const HashcodePrefix = "TC25"

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// RandomCode returns an upper-case alphanumeric code of the given length
func RandomCode(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(charset[rand.Intn(len(charset))])
	}
	return sb.String()
}

// GenerateHashcode returns a QR hashcode such as TC25-7QK2ZD
func GenerateHashcode() string {
	return HashcodePrefix + "-" + RandomCode(6)
}

// GenerateUniqueCode returns the public verification code of a certificate
func GenerateUniqueCode() string {
	return "CERT-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}

// GenerateEndpointHash returns an opaque hash for attendance and judge links
func GenerateEndpointHash() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GeneratePasscode returns a numeric passcode of the given length
func GeneratePasscode(length int) string {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		sb.WriteByte(byte('0' + rand.Intn(10)))
	}
	return sb.String()
}

// SanitizeFilename replaces every non alphanumeric character with an underscore
func SanitizeFilename(name string) string {
	return nonAlphanumeric.ReplaceAllString(name, "_")
}

// CertificateFileName returns cert-<templateID>-<unix ms>-<random>.pdf
func CertificateFileName(templateID uint, now time.Time) string {
	return fmt.Sprintf("cert-%d-%d-%s.pdf", templateID, now.UnixMilli(), strings.ToLower(RandomCode(6)))
}
