package domain

import "strings"

// DocumentFormat is the closed set of document encodings the extractor decodes.
type DocumentFormat int

const (
	FormatUnknown DocumentFormat = iota
	FormatPDF
	FormatDOCX
	FormatDOC
)

// ParseFormat maps a file extension, with or without the leading dot, to a format.
func ParseFormat(ext string) DocumentFormat {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")) {
	case "pdf":
		return FormatPDF
	case "docx":
		return FormatDOCX
	case "doc":
		return FormatDOC
	default:
		return FormatUnknown
	}
}

func (f DocumentFormat) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatDOC:
		return "doc"
	default:
		return "unknown"
	}
}

type StoredDocument struct {
	Name   string         `json:"name"`
	Path   string         `json:"path"`
	Format DocumentFormat `json:"-"`
	Size   int64          `json:"size"`
}

type Prediction struct {
	Filename   string `json:"filename"`
	StoredName string `json:"stored_name"`
	Category   string `json:"category"`
}
