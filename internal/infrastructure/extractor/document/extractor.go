package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

// Extractor decodes stored resumes into plain text, one handler per format.
// Decoding has no internal time bound; callers cap input size and request time.
type Extractor struct {
	maxXMLBytes int64
}

func NewExtractor() *Extractor {
	return &Extractor{maxXMLBytes: defaultMaxXMLBytes}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.StoredDocument) (string, error) {
	if doc == nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract", errors.New("nil document"))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := doc.Name
	if name == "" {
		name = filepath.Base(doc.Path)
	}
	op := "extract " + name

	info, err := os.Stat(doc.Path)
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, op, err)
	}
	if info.Size() == 0 {
		return "", domain.WrapError(domain.ErrEmptyContent, op, errors.New("zero-byte file"))
	}

	format := doc.Format
	if format == domain.FormatUnknown {
		format = domain.ParseFormat(filepath.Ext(doc.Path))
	}

	var raw string
	switch format {
	case domain.FormatPDF:
		raw, err = extractPDF(doc.Path)
		if err != nil {
			return "", domain.WrapError(domain.ErrCorruptDocument, op, err)
		}
	case domain.FormatDOCX:
		raw, err = extractDocx(doc.Path, e.maxXMLBytes)
		if err != nil {
			return "", domain.WrapError(domain.ErrCorruptDocument, op, err)
		}
	case domain.FormatDOC:
		raw, err = e.extractLegacyDoc(doc.Path)
		if err != nil {
			return "", domain.WrapError(domain.ErrUnsupportedLegacyFormat, op, err)
		}
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, op, fmt.Errorf("extension %q", filepath.Ext(doc.Path)))
	}

	text := normalizeText(raw)
	if text == "" {
		return "", domain.WrapError(domain.ErrEmptyContent, op, errors.New("no text after normalization"))
	}
	return text, nil
}

// extractLegacyDoc is best effort only. Renamed OOXML files go through the
// docx path; real Word 97-2003 files through the piece table. Anything else
// (RTF saved as .doc, fast-saved or encrypted files) is reported unsupported.
func (e *Extractor) extractLegacyDoc(path string) (string, error) {
	text, docxErr := extractDocx(path, e.maxXMLBytes)
	if docxErr == nil {
		return text, nil
	}
	text, binErr := extractWordBinary(path)
	if binErr != nil {
		return "", fmt.Errorf("not an OOXML archive (%v) and not a readable Word 97 file: %w", docxErr, binErr)
	}
	return text, nil
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n', r == '\t':
			return r
		case r == unicode.ReplacementChar:
			return -1
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
	return strings.TrimSpace(s)
}
