package probe

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MimeType sniffs the content of the file at path. It reports false when
// the file cannot be read or its type is not recognised.
func MimeType(path string) (string, bool) {
	m, err := mimetype.DetectFile(path)
	if err != nil || m.Is("application/octet-stream") {
		return "", false
	}
	mt, _, _ := strings.Cut(m.String(), ";")
	return mt, true
}

// ExtensionForMimeType maps a mime type to its usual extension without the
// leading dot.
func ExtensionForMimeType(mimeType string) (string, bool) {
	m := mimetype.Lookup(mimeType)
	if m == nil {
		return "", false
	}
	ext := strings.TrimPrefix(m.Extension(), ".")
	return ext, ext != ""
}
