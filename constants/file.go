package constants

import (
	"strings"
	"time"
)

// AllowedImageTypes holds the MIME types the ingestion gate accepts.
var AllowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/heic": {},
	"image/bmp":  {},
}

// ExtToMIME maps known image extensions to their MIME type for callers
// that only have a filename.
var ExtToMIME = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"heic": "image/heic",
	"bmp":  "image/bmp",
}

// Processing defaults. These are the documented pipeline constants; the
// batch scheduler and ingestion gate accept overrides at construction.
const (
	MaxFilesPerSubmit = 10
	DefaultBatchSize  = 5
	DefaultBatchDelay = 1000 * time.Millisecond
	DefaultAITimeout  = 15 * time.Second
	DefaultOCRTimeout = 60 * time.Second
)

// IsImageMIME reports whether the gate accepts the given MIME type.
func IsImageMIME(mime string) bool {
	_, ok := AllowedImageTypes[strings.ToLower(strings.TrimSpace(mime))]
	return ok
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MIMEForExt resolves a MIME type from a file extension, or "" if unknown.
func MIMEForExt(ext string) string {
	return ExtToMIME[NormalizeExt(ext)]
}
