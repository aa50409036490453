package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClientName(t *testing.T) {
	assert.Nil(t, ValidateClientName("Jean Dupont"))
	assert.Nil(t, ValidateClientName("  Al  "))

	assert.NotNil(t, ValidateClientName(""))
	assert.NotNil(t, ValidateClientName(" a "))
	assert.NotNil(t, ValidateClientName(strings.Repeat("x", 201)))
}

func TestValidateClientNameCountsRunes(t *testing.T) {
	assert.NotNil(t, ValidateClientName("é"), "one accented character is below the minimum")
	assert.Nil(t, ValidateClientName("Bénédicte Azéma-Gueffier"))
	assert.Nil(t, ValidateClientName(strings.Repeat("é", 200)))
	assert.NotNil(t, ValidateClientName(strings.Repeat("é", 201)))
}

func TestValidateEmail(t *testing.T) {
	assert.Nil(t, ValidateEmail(""), "email is optional")
	assert.Nil(t, ValidateEmail("test@gmail.com"))
	assert.Nil(t, ValidateEmail("prenom.nom@societe.fr"))

	assert.NotNil(t, ValidateEmail("not-an-email"))
	assert.NotNil(t, ValidateEmail("a@b"))
	assert.NotNil(t, ValidateEmail("a b@c.fr"))
}

func TestValidateEmailDisposableDomain(t *testing.T) {
	verr := ValidateEmail("test@mailinator.com")
	require.NotNil(t, verr)
	assert.Equal(t, "Domaines email jetables non autorisés", verr.Reason)

	assert.NotNil(t, ValidateEmail("test@MAILINATOR.com"), "domain match is case-insensitive")
}

func TestValidatePhone(t *testing.T) {
	assert.Nil(t, ValidatePhone(""), "phone is optional")
	assert.Nil(t, ValidatePhone("+33 6 12 34 56 78"))
	assert.Nil(t, ValidatePhone("06-12-34-56-78"))

	assert.NotNil(t, ValidatePhone("12345"), "too few digits")
	assert.NotNil(t, ValidatePhone("1234567890123456"), "too many digits")
}

func TestValidateFileSize(t *testing.T) {
	assert.Nil(t, ValidateFile(FileMeta{Name: "cahier-des-charges.pdf", Size: 1 << 20, MimeType: "application/pdf"}))

	verr := ValidateFile(FileMeta{Name: "video.mp4", Size: 60 << 20, MimeType: "video/mp4"})
	require.NotNil(t, verr)
	assert.Equal(t, "Fichier trop volumineux (max 50MB)", verr.Reason)
}

func TestValidateFileMimeType(t *testing.T) {
	assert.Nil(t, ValidateFile(FileMeta{Name: "logo.png", Size: 1024, MimeType: "image/png"}))
	assert.Nil(t, ValidateFile(FileMeta{Name: "notes.txt", Size: 1024, MimeType: "text/plain"}))
	assert.Nil(t, ValidateFile(FileMeta{Name: "cahier.docx", Size: 1024,
		MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}))

	assert.NotNil(t, ValidateFile(FileMeta{Name: "archive.zip", Size: 1024, MimeType: "application/zip"}))
}

func TestValidateFileExtensionIndependentOfMime(t *testing.T) {
	// A spoofed PDF MIME type must not let an executable through.
	verr := ValidateFile(FileMeta{Name: "invoice.exe", Size: 1024, MimeType: "application/pdf"})
	require.NotNil(t, verr)
	assert.Equal(t, "Extension de fichier non autorisée", verr.Reason)

	assert.NotNil(t, ValidateFile(FileMeta{Name: "script.JS", Size: 10, MimeType: "text/plain"}))
	assert.Nil(t, ValidateFile(FileMeta{Name: "noextension", Size: 10, MimeType: "text/plain"}))
}
