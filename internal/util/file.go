package util

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Example output for "ex.txt": "21313123123_ex.txt"
func AddUniquePrefixToFileName(fileName string) string {
	uniquePrefix := fmt.Sprintf("%d", time.Now().UnixNano())
	return fmt.Sprintf("%s_%s", uniquePrefix, fileName)
}

func GetTempDir() string {
	return fmt.Sprintf("%s/isr-field", os.TempDir())
}

func CreateTemp(pattern string) (*os.File, error) {
	tempDir := GetTempDir()
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return os.CreateTemp(tempDir, pattern)
}

// IsImageContentType reports whether a MIME type describes an image. Used
// to split attachments into image/document buckets for export filtering.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// SplitFileName returns the base name and extension (with dot) of a file
// name. "photo1.jpg" yields ("photo1", ".jpg").
func SplitFileName(fileName string) (string, string) {
	if idx := strings.LastIndex(fileName, "."); idx > 0 {
		return fileName[:idx], fileName[idx:]
	}
	return fileName, ""
}
