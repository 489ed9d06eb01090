package httpadapter

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

const defaultMaxUploadBytes = 16 << 20

const (
	msgNoFilePart      = "No file part in the request."
	msgNoFileSelected  = "No file selected."
	msgInvalidFileType = "Invalid file type. Please upload a .pdf, .doc, or .docx."
	msgStorage         = "Error saving file."
	msgAnalysis        = "An error occurred during analysis."
	msgUnavailable     = "Model temporarily unavailable."
	msgUnauthorized    = "unauthorized"
)

func errPayloadTooLarge(maxBytes int64) error {
	return domain.WrapError(domain.ErrPayloadTooLarge, "read upload", fmt.Errorf("limit %d bytes", maxBytes))
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrValidation):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrExtraction):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// mapAnalyzeError picks the client-facing message. 5xx causes stay in the log.
func mapAnalyzeError(err error, filename string, maxBytes int64) (int, string) {
	status := mapErrorToHTTPStatus(err)
	switch {
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return status, fmt.Sprintf("File exceeds the maximum upload size of %d bytes.", maxBytes)
	case errors.Is(err, domain.ErrNoFileSelected):
		return status, msgNoFileSelected
	case errors.Is(err, domain.ErrValidation):
		return status, msgInvalidFileType
	case errors.Is(err, domain.ErrExtraction):
		return status, fmt.Sprintf("Could not extract text from %s. File might be empty or corrupted.", filename)
	case errors.Is(err, domain.ErrUnauthorized):
		return status, msgUnauthorized
	case errors.Is(err, domain.ErrTemporary):
		return status, msgUnavailable
	case errors.Is(err, domain.ErrStorage):
		return status, msgStorage
	default:
		return status, msgAnalysis
	}
}
