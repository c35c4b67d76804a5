package storage

import (
	"fmt"
	"strings"
)

// AllowedContentTypes defines the allowed MIME types for lead audio uploads.
var AllowedContentTypes = map[string]bool{
	"audio/wav":       true,
	"audio/x-wav":     true,
	"audio/wave":      true,
	"audio/vnd.wave":  true,
	"audio/mpeg":      true,
	"audio/ogg":       true,
	"audio/webm":      true,
	"audio/mp4":       true,
	"audio/x-m4a":     true,
	"application/ogg": true,
}

// NormalizeContentType strips parameters such as codecs from a MIME type.
func NormalizeContentType(contentType string) string {
	normalized := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(normalized))
}

// ValidateContentType checks if the content type is allowed.
func (s *MinIOService) ValidateContentType(contentType string) error {
	return validateContentType(contentType)
}

// ValidateFileSize checks if the file size is within limits.
func (s *MinIOService) ValidateFileSize(sizeBytes int64) error {
	return validateFileSize(sizeBytes, s.maxFileSize)
}

func validateContentType(contentType string) error {
	if !AllowedContentTypes[NormalizeContentType(contentType)] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

func validateFileSize(sizeBytes, maxFileSize int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if maxFileSize > 0 && sizeBytes > maxFileSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, maxFileSize)
	}
	return nil
}
