package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ParsePDF extracts text content from a PDF file
func ParsePDF(filePath string) (string, error) {
	if err := ValidateFileSize(filePath); err != nil {
		return "", err
	}

	file, reader, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer file.Close()

	return extractPages(reader)
}

// ParsePDFFromReader extracts text from a PDF io.Reader (for uploaded files)
func ParsePDFFromReader(reader io.Reader, size int64) (string, error) {
	if size > MaxFileSize {
		return "", tooLarge(size)
	}

	content, err := io.ReadAll(io.LimitReader(reader, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF content: %w", err)
	}
	if len(content) > MaxFileSize {
		return "", tooLarge(int64(len(content)))
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	return extractPages(pdfReader)
}

// extractPages concatenates the plain text of every readable page.
// Pages that fail to decode are skipped.
func extractPages(reader *pdf.Reader) (string, error) {
	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		b.WriteString(text)
		b.WriteString("\n")
	}

	content := strings.TrimSpace(b.String())
	if content == "" {
		return "", fmt.Errorf("%w in PDF", ErrNoText)
	}
	return content, nil
}
