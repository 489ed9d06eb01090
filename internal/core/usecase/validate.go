package usecase

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

const maxFilenameBytes = 255

// DefaultAllowedExtensions is the extension allow-list used when none is configured.
var DefaultAllowedExtensions = []string{"pdf", "doc", "docx"}

// ValidateFilename checks the client filename against the allow-list and
// returns a name that is safe to join onto the upload directory.
func ValidateFilename(filename string, allowed []string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", domain.WrapError(domain.ErrNoFileSelected, "validate filename", errors.New("empty filename"))
	}
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}

	ext, ok := fileExtension(filename)
	if !ok || !extensionAllowed(ext, allowed) {
		return "", domain.WrapError(domain.ErrInvalidFileType, "validate filename", fmt.Errorf("extension %q", ext))
	}

	safe := sanitizeFilename(filename)
	if !usableName(safe, ext) {
		// Stem folded away, e.g. "Резюме.pdf".
		safe = "resume_" + uuid.NewString() + "." + ext
	}
	return safe, nil
}

func usableName(safe, ext string) bool {
	safeExt, ok := fileExtension(safe)
	return ok && safeExt == ext && len(safe) > len(ext)+1
}

func fileExtension(name string) (string, bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", false
	}
	return strings.ToLower(name[idx+1:]), true
}

func extensionAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(a), "."), ext) {
			return ext != ""
		}
	}
	return false
}

// sanitizeFilename mirrors werkzeug's secure_filename: ASCII folding,
// separators to spaces, whitespace to '_', only [A-Za-z0-9_.-] kept,
// leading and trailing '.' and '_' trimmed. Dot runs are collapsed so the
// result can never hold a ".." element.
func sanitizeFilename(name string) string {
	folded := norm.NFKD.String(name)
	folded = strings.Map(func(r rune) rune {
		switch {
		case r > unicode.MaxASCII:
			return -1
		case r == '/', r == '\\':
			return ' '
		default:
			return r
		}
	}, folded)

	base := strings.Join(strings.Fields(folded), "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, base)
	for strings.Contains(base, "..") {
		base = strings.ReplaceAll(base, "..", ".")
	}
	base = strings.Trim(base, "._")

	if len(base) > maxFilenameBytes {
		ext := filepath.Ext(base)
		if len(ext) >= maxFilenameBytes {
			return ""
		}
		base = strings.TrimRight(base[:maxFilenameBytes-len(ext)], "._") + ext
	}
	return base
}
