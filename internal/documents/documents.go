// Package documents extracts plain text from uploaded resumes and job postings.
package documents

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"jobassist/internal/utils"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Kind identifies how a document's bytes are turned into text
type Kind string

const (
	KindText    Kind = "text"
	KindPDF     Kind = "pdf"
	KindDOCX    Kind = "docx"
	KindUnknown Kind = "unknown"
)

var kindsByExtension = map[string]Kind{
	".txt":      KindText,
	".text":     KindText,
	".md":       KindText,
	".markdown": KindText,
	".json":     KindText,
	".pdf":      KindPDF,
	".docx":     KindDOCX,
}

// KindOf classifies a file by extension
func KindOf(filename string) Kind {
	if kind, ok := kindsByExtension[utils.GetFileExtension(filename)]; ok {
		return kind
	}
	return KindUnknown
}

// KindOfContentType classifies an uploaded body by its media type
func KindOfContentType(contentType string) Kind {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(strings.ToLower(mediaType)) {
	case "text/plain", "text/markdown", "application/json":
		return KindText
	case "application/pdf":
		return KindPDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return KindDOCX
	default:
		return KindUnknown
	}
}

// ExtractText returns the plain text of data. Unknown kinds are read as text.
func ExtractText(kind Kind, data []byte) (string, error) {
	switch kind {
	case KindPDF:
		return pdfText(data)
	case KindDOCX:
		return docxText(data)
	default:
		return string(data), nil
	}
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	docxTag          = regexp.MustCompile(`<[^>]+>`)
	blankLines       = regexp.MustCompile(`\n{3,}`)
)

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return xmlToText(doc.Editable().GetContent()), nil
}

// xmlToText flattens WordprocessingML into one line per paragraph
func xmlToText(content string) string {
	text := docxParagraphEnd.ReplaceAllString(content, "\n")
	text = docxTag.ReplaceAllString(text, "")
	text = unescapeXML(text)
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

var xmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}
