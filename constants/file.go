package constants

import (
	"path/filepath"
	"strings"
)

// AllowedExtensions holds the drawing file extensions accepted for analysis.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// FileFormat is the coarse document class used to pick a corpus path.
type FileFormat string

const (
	FormatPDF   FileFormat = "PDF"
	FormatImage FileFormat = "IMAGE"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsAllowedPath reports whether the path carries a supported extension.
func IsAllowedPath(path string) bool {
	_, ok := AllowedExtensions[NormalizeExt(filepath.Ext(path))]
	return ok
}

// MapExtToFormat maps a normalized extension to its format.
func MapExtToFormat(ext string) (FileFormat, bool) {
	switch NormalizeExt(ext) {
	case "pdf":
		return FormatPDF, true
	case "jpg", "jpeg", "png":
		return FormatImage, true
	default:
		return "", false
	}
}

// MimeTypeForExt returns the MIME type declared to the inference service.
func MimeTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
