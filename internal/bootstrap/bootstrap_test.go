package bootstrap

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	httpadapter "github.com/kirillkom/resume-classifier/internal/adapters/http"
	"github.com/kirillkom/resume-classifier/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	modelDir := filepath.Join("..", "..", "models")
	return config.Config{
		UploadDir:             t.TempDir(),
		MaxUploadBytes:        16 << 20,
		AllowedExtensions:     []string{"pdf", "doc", "docx"},
		KeepUploads:           true,
		ModelDir:              modelDir,
		ModelVectorizerPath:   filepath.Join(modelDir, "vectorizer.json"),
		ModelClassifierPath:   filepath.Join(modelDir, "classifier.json"),
		ModelLabelEncoderPath: filepath.Join(modelDir, "label_encoder.json"),
		ModelBreakerEnabled:   true,
	}
}

// onePagePDF renders a single Helvetica line with a correct xref table.
func onePagePDF(text string) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 6)
	buf.WriteString("%PDF-1.4\n")
	obj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}
	stream := fmt.Sprintf("BT\n/F1 12 Tf\n72 720 Td\n(%s) Tj\nET\n", text)
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, "<< /Type /Pages /Kids [4 0 R] /Count 1 >>")
	obj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	obj(4, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents 5 0 R >>")
	obj(5, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	xref := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func docxWithParagraphs(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>")
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func upload(t *testing.T, handler http.Handler, filename string, content []byte) (int, map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("resume", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(content)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/predict", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", res.Body.String(), err)
	}
	return res.Code, body
}

func newHandler(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	app, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return httpadapter.NewRouter(cfg, app.Analyzer, app.Metrics).Handler()
}

func TestPipelineClassifiesPDFResume(t *testing.T) {
	cfg := testConfig(t)
	handler := newHandler(t, cfg)

	status, body := upload(t, handler, "resume.pdf", onePagePDF("Experienced Python developer with Django and Flask background"))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	if body["message"] != `"resume.pdf" analyzed successfully!` || body["category"] != "Python Developer" {
		t.Fatalf("unexpected body %v", body)
	}
	if _, err := os.Stat(filepath.Join(cfg.UploadDir, "resume.pdf")); err != nil {
		t.Fatalf("expected stored upload: %v", err)
	}
}

func TestPipelineClassifiesDocxResume(t *testing.T) {
	handler := newHandler(t, testConfig(t))

	status, body := upload(t, handler, "My CV.docx", docxWithParagraphs(t, "Jane Doe", "Recruitment and payroll", "Onboarding programs"))
	if status != http.StatusOK || body["category"] != "HR" {
		t.Fatalf("expected HR, got %d %v", status, body)
	}
	if body["message"] != `"My CV.docx" analyzed successfully!` {
		t.Fatalf("expected original filename in message, got %q", body["message"])
	}
}

func TestPipelineAcceptsNonLatinFilename(t *testing.T) {
	cfg := testConfig(t)
	handler := newHandler(t, cfg)

	status, body := upload(t, handler, "Резюме.docx", docxWithParagraphs(t, "Recruitment and payroll"))
	if status != http.StatusOK || body["category"] != "HR" {
		t.Fatalf("expected HR, got %d %v", status, body)
	}
	if body["message"] != `"Резюме.docx" analyzed successfully!` {
		t.Fatalf("expected original filename in message, got %q", body["message"])
	}
	entries, err := os.ReadDir(cfg.UploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "resume_") || filepath.Ext(entries[0].Name()) != ".docx" {
		t.Fatalf("expected one generated .docx upload, got %v", entries)
	}
}

func TestPipelineRejectsDisallowedTypeWithoutWriting(t *testing.T) {
	cfg := testConfig(t)
	handler := newHandler(t, cfg)

	status, body := upload(t, handler, "malware.exe", []byte("MZ\x90\x00"))
	if status != http.StatusBadRequest || !strings.HasPrefix(body["error"], "Invalid file type") {
		t.Fatalf("expected invalid file type, got %d %v", status, body)
	}
	entries, err := os.ReadDir(cfg.UploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files written, found %d", len(entries))
	}
}

func TestPipelineRejectsEmptyDocx(t *testing.T) {
	handler := newHandler(t, testConfig(t))

	status, body := upload(t, handler, "empty.docx", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["error"] != "Could not extract text from empty.docx. File might be empty or corrupted." {
		t.Fatalf("unexpected error %q", body["error"])
	}
}

func TestPipelineDiscardsUploadsWhenConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.KeepUploads = false
	handler := newHandler(t, cfg)

	status, _ := upload(t, handler, "resume.pdf", onePagePDF("Figma HTML CSS"))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	entries, _ := os.ReadDir(cfg.UploadDir)
	if len(entries) != 0 {
		t.Fatalf("expected upload removed after analysis, found %d entries", len(entries))
	}
}

func TestNewFailsFastOnBadArtifacts(t *testing.T) {
	cfg := testConfig(t)
	cfg.ModelVectorizerPath = filepath.Join(t.TempDir(), "missing.json")
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for missing vectorizer")
	}

	cfg = testConfig(t)
	cfg.ModelLabelEncoderPath = filepath.Join(t.TempDir(), "missing.json")
	if _, err := New(cfg); err == nil || !strings.Contains(err.Error(), "label encoder") {
		t.Fatalf("expected encoded classes to require a label encoder, got %v", err)
	}
}
