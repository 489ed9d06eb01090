package document

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

// buildPDF renders one Helvetica text line per page with a valid xref table.
func buildPDF(pages ...string) []byte {
	objCount := 3 + 2*len(pages)
	offsets := make([]int, objCount+1)
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	kids := make([]string, 0, len(pages))
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		pageNum := 4 + 2*i
		contentNum := pageNum + 1
		writeObj(pageNum, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentNum,
		))
		escaped := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(text)
		stream := fmt.Sprintf("BT\n/F1 12 Tf\n72 720 Td\n(%s) Tj\nET\n", escaped)
		writeObj(contentNum, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", objCount+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= objCount; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", objCount+1, xref)
	return buf.Bytes()
}

// buildDocx packs raw w:body children into a minimal OOXML archive.
func buildDocx(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
			`xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006">` +
			`<w:body>` + bodyXML + `</w:body></w:document>`,
	}
	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

// buildWord97Streams lays out a WordDocument stream with a FIB pointing at a
// single-piece table stored in the 1Table stream.
func buildWord97Streams(text string, compressed bool) (word, table []byte) {
	const (
		csw       = 14
		cslw      = 22
		cbRgFcLcb = 93
		textAt    = 0x800
	)
	word = make([]byte, textAt)
	binary.LittleEndian.PutUint16(word[0:], wordIdent)
	binary.LittleEndian.PutUint16(word[0x0A:], fibFlagTable1)

	pos := 32
	binary.LittleEndian.PutUint16(word[pos:], csw)
	pos += 2 + csw*2
	binary.LittleEndian.PutUint16(word[pos:], cslw)
	rgLw := pos + 2
	ccp := uint32(len([]rune(text)))
	binary.LittleEndian.PutUint32(word[rgLw+ccpTextIndex*4:], ccp)
	pos = rgLw + cslw*4
	binary.LittleEndian.PutUint16(word[pos:], cbRgFcLcb)
	rgFcLcb := pos + 2

	var fc uint32
	if compressed {
		word = append(word, []byte(text)...)
		fc = uint32(textAt*2) | pieceCompressed
	} else {
		for _, r := range text {
			word = binary.LittleEndian.AppendUint16(word, uint16(r))
		}
		fc = textAt
	}

	table = []byte{clxPcdtMarker}
	table = binary.LittleEndian.AppendUint32(table, 16)
	table = binary.LittleEndian.AppendUint32(table, 0)
	table = binary.LittleEndian.AppendUint32(table, ccp)
	table = append(table, 0, 0)
	table = binary.LittleEndian.AppendUint32(table, fc)
	table = append(table, 0, 0)

	binary.LittleEndian.PutUint32(word[rgFcLcb+fcClxPairIndex*8:], 0)
	binary.LittleEndian.PutUint32(word[rgFcLcb+fcClxPairIndex*8+4:], uint32(len(table)))
	return word, table
}

func storeFixture(t *testing.T, name string, data []byte) *domain.StoredDocument {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return &domain.StoredDocument{
		Name:   name,
		Path:   path,
		Format: domain.ParseFormat(filepath.Ext(name)),
		Size:   int64(len(data)),
	}
}
