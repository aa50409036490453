// Package storage uploads attachment bytes to S3. Only metadata lands in the
// database; the stored URL is what staff and exports link to.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"intakedesk/internal/utils"
	"intakedesk/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Storage struct {
	client        *s3.Client
	bucketName    string
	publicBaseURL string
}

func NewS3Storage(client *s3.Client, bucketName, publicBaseURL string) *S3Storage {
	return &S3Storage{
		client:        client,
		bucketName:    bucketName,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// UploadFile stores one attachment under a key derived from the need ID and
// returns the public URL to persist.
func (s *S3Storage) UploadFile(ctx context.Context, needID, originalName, contentType string, body io.Reader) (string, error) {

	key := ObjectKey(needID, originalName)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", originalName, err)
	}

	return s.PublicURL(key), nil
}

func (s *S3Storage) PublicURL(key string) string {
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.publicBaseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucketName, key)
}

// ObjectKey builds a collision-free key: the original filename is untrusted,
// so only its extension survives.
func ObjectKey(needID, originalName string) string {
	ext := "bin"
	if idx := strings.LastIndex(originalName, "."); idx >= 0 && idx < len(originalName)-1 {
		ext = strings.ToLower(originalName[idx+1:])
	}
	return fmt.Sprintf("uploads/%s-%s.%s", needID, utils.NanoIDSize(16), ext)
}

// FileTypeFromMime buckets a MIME type into the attachment type enum.
func FileTypeFromMime(mimeType string) types.FileType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return types.FileTypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return types.FileTypeVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return types.FileTypeAudio
	case strings.Contains(mimeType, "pdf"),
		strings.Contains(mimeType, "document"),
		strings.Contains(mimeType, "text"):
		return types.FileTypeDocument
	default:
		return types.FileTypeOther
	}
}
