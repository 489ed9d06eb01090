package httpadapter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

type analyzeResponse struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

func (rt *Router) analyzeResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	maxBytes := rt.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rt.writeAnalyzeError(w, r, "", errPayloadTooLarge(maxBytes))
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgNoFilePart})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(resumeField)
	if err != nil {
		// A file input submitted without a selection arrives as a plain
		// form value with an empty filename.
		if _, ok := r.MultipartForm.Value[resumeField]; ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgNoFileSelected})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgNoFilePart})
		return
	}
	defer file.Close()

	if header.Size > maxBytes {
		rt.writeAnalyzeError(w, r, header.Filename, errPayloadTooLarge(maxBytes))
		return
	}

	pred, err := rt.analyzer.Analyze(r.Context(), header.Filename, file)
	if err != nil {
		rt.writeAnalyzeError(w, r, header.Filename, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Message:  fmt.Sprintf("\"%s\" analyzed successfully!", pred.Filename),
		Category: pred.Category,
	})
}

func (rt *Router) maxUploadBytes() int64 {
	if rt.cfg.MaxUploadBytes > 0 {
		return rt.cfg.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

func (rt *Router) writeAnalyzeError(w http.ResponseWriter, r *http.Request, filename string, err error) {
	status, message := mapAnalyzeError(err, filename, rt.maxUploadBytes())
	attrs := []any{
		"request_id", requestIDFromContext(r.Context()),
		"filename", filename,
		"status", status,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		slog.Error("resume_analysis_failed", attrs...)
	} else {
		slog.Warn("resume_analysis_rejected", attrs...)
	}
	writeJSON(w, status, map[string]string{"error": message})
}
