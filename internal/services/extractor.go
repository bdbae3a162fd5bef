package services

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

// TextExtractor pulls plain text out of uploaded resume and cover
// letter binaries. Extraction is best-effort: every failure is logged
// and reported as an empty string so it never aborts a submission.
type TextExtractor interface {
	Extract(data []byte, filename string) string
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

func (e *textExtractor) Extract(data []byte, filename string) string {
	if len(data) == 0 {
		return ""
	}

	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDocx(data)
	case ".txt":
		if !utf8.Valid(data) {
			err = fmt.Errorf("text file is not valid UTF-8")
			break
		}
		text = string(data)
	default:
		// Unsupported format, not an error.
		return ""
	}

	if err != nil {
		log.Printf("⚠️  Failed to extract text from %s: %v", filename, err)
		return ""
	}

	return CleanText(text)
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf library panics on some corrupt files.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("panic while parsing PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest.
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	text = textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}

	return text, nil
}

func extractDocx(data []byte) (string, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to convert DOCX: %w", err)
	}
	return text, nil
}

// CleanText trims each line and drops empty ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
