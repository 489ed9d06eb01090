package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	wordprocessingNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	strictWordprocessingNS = "http://purl.oclc.org/ooxml/wordprocessingml/main"
	markupCompatNS         = "http://schemas.openxmlformats.org/markup-compatibility/2006"

	defaultMaxXMLBytes int64 = 64 << 20
)

// extractDocx joins the non-blank paragraphs of word/document.xml with
// newlines, in document order. Table-cell and text-box paragraphs count.
func extractDocx(path string, maxXMLBytes int64) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(io.LimitReader(rc, maxXMLBytes))
	if err != nil {
		return "", err
	}
	return strings.Join(paragraphs, "\n"), nil
}

func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var (
		out       []string
		open      []*strings.Builder
		inText    bool
		inProps   int
		skipDepth int
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if skipDepth > 0 {
				skipDepth++
				continue
			}
			if t.Name.Space == markupCompatNS && t.Name.Local == "Fallback" {
				skipDepth = 1
				continue
			}
			if !isWordprocessingNS(t.Name.Space) {
				continue
			}
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "pPr":
				inProps++
			case "t":
				inText = true
			case "tab":
				if inProps == 0 && len(open) > 0 {
					open[len(open)-1].WriteByte('\t')
				}
			case "br", "cr":
				if inProps == 0 && len(open) > 0 {
					open[len(open)-1].WriteByte('\n')
				}
			}

		case xml.CharData:
			if skipDepth == 0 && inText && len(open) > 0 {
				open[len(open)-1].Write(t)
			}

		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			if !isWordprocessingNS(t.Name.Space) {
				continue
			}
			switch t.Name.Local {
			case "pPr":
				if inProps > 0 {
					inProps--
				}
			case "t":
				inText = false
			case "p":
				if len(open) == 0 {
					continue
				}
				text := open[len(open)-1].String()
				open = open[:len(open)-1]
				if strings.TrimSpace(text) != "" {
					out = append(out, text)
				}
			}
		}
	}
	return out, nil
}

// Strict OOXML uses its own namespace for the same vocabulary.
func isWordprocessingNS(space string) bool {
	return space == wordprocessingNS || space == strictWordprocessingNS
}
