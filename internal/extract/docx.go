package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// documentEntry is the body-markup entry inside a DOCX archive.
const documentEntry = "word/document.xml"

// docxText extracts text from a DOCX blob: open as a ZIP archive, read
// word/document.xml, collect every text run in document order, join
// with single spaces, then drop blank lines.
func docxText(data []byte) string {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Sprintf("[DOCX text extraction failed: %v]", err)
	}

	var entry *zip.File
	for _, f := range reader.File {
		if f.Name == documentEntry {
			entry = f
			break
		}
	}
	if entry == nil {
		return "[DOCX: no word/document.xml found]"
	}

	rc, err := entry.Open()
	if err != nil {
		return fmt.Sprintf("[DOCX text extraction failed: %v]", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Sprintf("[DOCX text extraction failed: %v]", err)
	}

	runs, err := textRuns(content)
	if err != nil {
		return fmt.Sprintf("[DOCX text extraction failed: %v]", err)
	}

	return cleanLines(strings.Join(runs, " "))
}

// textRuns walks the document XML token stream and collects the content
// of every <w:t> element in document order.
func textRuns(content []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var runs []string
	var inText bool
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText && len(t) > 0 {
				runs = append(runs, string(t))
			}
		}
	}
	return runs, nil
}

// cleanLines re-splits joined run text into lines and drops blank or
// whitespace-only lines.
func cleanLines(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n")
}
