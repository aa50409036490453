package guard

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError is a user-correctable input problem; Reason is safe to
// surface to the submitter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var disposableDomains = []string{
	"tempmail.com",
	"guerrillamail.com",
	"mailinator.com",
	"10minutemail.com",
	"throwaway.email",
}

func ValidateClientName(name string) *ValidationError {
	trimmed := strings.TrimSpace(name)
	// Counted in runes, not bytes; accented names must not be penalized.
	if n := utf8.RuneCountInString(trimmed); n < 2 || n > 200 {
		return &ValidationError{Field: "clientName", Reason: "Nom invalide (2 à 200 caractères)"}
	}
	return nil
}

// ValidateEmail accepts an empty value; the field is optional.
func ValidateEmail(email string) *ValidationError {
	if email == "" {
		return nil
	}

	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "clientEmail", Reason: "Format email invalide"}
	}

	at := strings.LastIndex(email, "@")
	domain := strings.ToLower(email[at+1:])
	for _, d := range disposableDomains {
		if domain == d {
			return &ValidationError{Field: "clientEmail", Reason: "Domaines email jetables non autorisés"}
		}
	}

	return nil
}

var nonDigits = regexp.MustCompile(`\D`)

// ValidatePhone accepts an empty value; the field is optional. Formatting is
// ignored, only the digit count matters.
func ValidatePhone(phone string) *ValidationError {
	if phone == "" {
		return nil
	}

	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) < 8 || len(digits) > 15 {
		return &ValidationError{Field: "clientPhone", Reason: "Numéro de téléphone invalide"}
	}

	return nil
}

// FileMeta carries the attachment attributes the guard can judge without
// reading the bytes.
type FileMeta struct {
	Name     string
	Size     int64
	MimeType string
}

const maxFileSize = 50 << 20 // 50 MiB

var allowedMimePrefixes = []string{
	"image/",
	"application/pdf",
	"audio/",
	"video/",
	"text/",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Checked independently of the MIME type: a spoofed Content-Type must not
// smuggle an executable through.
var suspiciousExtensions = []string{"exe", "bat", "cmd", "com", "pif", "scr", "vbs", "js"}

func ValidateFile(f FileMeta) *ValidationError {
	if f.Size > maxFileSize {
		return &ValidationError{Field: "files", Reason: "Fichier trop volumineux (max 50MB)"}
	}

	allowed := false
	for _, prefix := range allowedMimePrefixes {
		if strings.HasPrefix(f.MimeType, prefix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return &ValidationError{Field: "files", Reason: "Type de fichier non autorisé"}
	}

	if idx := strings.LastIndex(f.Name, "."); idx >= 0 {
		ext := strings.ToLower(f.Name[idx+1:])
		for _, bad := range suspiciousExtensions {
			if ext == bad {
				return &ValidationError{Field: "files", Reason: "Extension de fichier non autorisée"}
			}
		}
	}

	return nil
}
