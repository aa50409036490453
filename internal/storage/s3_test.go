package storage

import (
	"strings"
	"testing"

	"intakedesk/pkg/types"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("need-abc", "Maquette Finale.PNG")
	assert.True(t, strings.HasPrefix(key, "uploads/need-abc-"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotContains(t, key, " ", "original filename must not leak into the key")

	assert.True(t, strings.HasSuffix(ObjectKey("n1", "noextension"), ".bin"))
	assert.True(t, strings.HasSuffix(ObjectKey("n1", "trailingdot."), ".bin"))
}

func TestObjectKeyIsUnique(t *testing.T) {
	a := ObjectKey("n1", "file.pdf")
	b := ObjectKey("n1", "file.pdf")
	assert.NotEqual(t, a, b)
}

func TestFileTypeFromMime(t *testing.T) {
	assert.Equal(t, types.FileTypeImage, FileTypeFromMime("image/png"))
	assert.Equal(t, types.FileTypeVideo, FileTypeFromMime("video/mp4"))
	assert.Equal(t, types.FileTypeAudio, FileTypeFromMime("audio/mpeg"))
	assert.Equal(t, types.FileTypeDocument, FileTypeFromMime("application/pdf"))
	assert.Equal(t, types.FileTypeDocument, FileTypeFromMime("text/plain"))
	assert.Equal(t, types.FileTypeDocument,
		FileTypeFromMime("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.Equal(t, types.FileTypeOther, FileTypeFromMime("application/zip"))
}
