// Package extract converts raw document blobs into normalised UTF-8
// text. Extraction is total: failures are rendered as bracketed
// diagnostic strings so callers can always concatenate the result.
package extract

import (
	"fmt"
	"strings"
)

// MIME types the extractor recognises.
const (
	MimeText      = "text/plain"
	MimeGoogleDoc = "application/vnd.google-apps.document"
	MimeDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeFolder    = "application/vnd.google-apps.folder"
)

// Text extracts normalised text from a raw blob. It never fails: any
// extraction problem is returned as a bracketed diagnostic string of
// the form "[<kind> extraction failed: <reason>]". Zero-length output
// is a valid result, distinct from a diagnostic.
func Text(mimeType, name string, data []byte) string {
	switch {
	case strings.Contains(mimeType, MimeText) || strings.HasSuffix(name, ".txt"):
		return decodeUTF8(data)
	case mimeType == MimeGoogleDoc:
		// Google Docs arrive pre-exported as plain text by the source adapter.
		return decodeUTF8(data)
	case strings.Contains(mimeType, MimeDocx) || strings.HasSuffix(name, ".docx"):
		return docxText(data)
	default:
		return fmt.Sprintf("[File type: %s - Size: %d bytes - Content not extracted]", mimeType, len(data))
	}
}

// diagnosticPrefixes are the placeholder openings this package and the
// assembler emit. Matching these, not any leading bracket, keeps real
// content that happens to start with "[" out of the error stats.
var diagnosticPrefixes = []string{
	"[File type:",
	"[DOCX",
	"[error loading ",
}

// IsDiagnostic reports whether an extraction result is a diagnostic
// placeholder rather than real content. Callers must use this, not
// emptiness, to detect failures.
func IsDiagnostic(s string) bool {
	for _, prefix := range diagnosticPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// decodeUTF8 decodes bytes as UTF-8, dropping invalid sequences rather
// than failing.
func decodeUTF8(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}
