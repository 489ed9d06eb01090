package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrStorage      = errors.New("storage failure")
	ErrExtraction   = errors.New("text extraction failed")
	ErrModel        = errors.New("model failure")
	ErrTemporary    = errors.New("temporary failure")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrNoFileSelected  = fmt.Errorf("no file selected: %w", ErrValidation)
	ErrInvalidFileType = fmt.Errorf("invalid file type: %w", ErrValidation)

	ErrPayloadTooLarge = fmt.Errorf("payload too large: %w", ErrStorage)

	ErrCorruptDocument         = fmt.Errorf("corrupt document: %w", ErrExtraction)
	ErrUnsupportedLegacyFormat = fmt.Errorf("unsupported legacy format: %w", ErrExtraction)
	ErrUnsupportedFormat       = fmt.Errorf("unsupported format: %w", ErrExtraction)
	ErrEmptyContent            = fmt.Errorf("empty content: %w", ErrExtraction)
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
