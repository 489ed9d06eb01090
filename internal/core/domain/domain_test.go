package domain

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]DocumentFormat{
		"pdf":   FormatPDF,
		".PDF":  FormatPDF,
		"docx":  FormatDOCX,
		".Doc":  FormatDOC,
		"exe":   FormatUnknown,
		"":      FormatUnknown,
		".docm": FormatUnknown,
	}
	for ext, want := range cases {
		if got := ParseFormat(ext); got != want {
			t.Fatalf("ParseFormat(%q) = %s, want %s", ext, got, want)
		}
	}
}

func TestSubKindsMatchParentKind(t *testing.T) {
	err := WrapError(ErrEmptyContent, "extract", errors.New("blank"))
	if !IsKind(err, ErrEmptyContent) {
		t.Fatalf("expected empty content kind, got %v", err)
	}
	if !IsKind(err, ErrExtraction) {
		t.Fatalf("expected extraction kind, got %v", err)
	}
	if IsKind(err, ErrStorage) {
		t.Fatalf("extraction error must not match storage kind")
	}

	tooLarge := WrapError(ErrPayloadTooLarge, "save", errors.New("17 MiB"))
	if !IsKind(tooLarge, ErrStorage) {
		t.Fatalf("expected payload too large to be a storage error")
	}
}

func TestWrapErrorNil(t *testing.T) {
	if WrapError(ErrModel, "predict", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
}
