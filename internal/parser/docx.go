package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// ParseDOCX extracts text content from a DOCX file
func ParseDOCX(filePath string) (string, error) {
	if err := ValidateFileSize(filePath); err != nil {
		return "", err
	}

	doc, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer doc.Close()

	text := xmlText(doc.Editable().GetContent())
	if text == "" {
		return "", fmt.Errorf("%w in DOCX", ErrNoText)
	}

	return text, nil
}

// xmlText returns the character data of a WordprocessingML body, one line
// per paragraph. Malformed markup ends extraction at the point of failure.
func xmlText(content string) string {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var b strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			if !errors.Is(err, io.EOF) && b.Len() == 0 {
				return strings.TrimSpace(content)
			}
			break
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" {
				b.WriteString("\n")
			}
		case xml.StartElement:
			if t.Name.Local == "tab" {
				b.WriteString("\t")
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// ParseDOCXFromReader extracts text from a DOCX by creating a temp file
func ParseDOCXFromReader(reader io.Reader, filename string) (string, error) {
	tmpPath, err := CreateTempFile(reader, filename)
	if err != nil {
		return "", err
	}
	defer CleanupTempFile(tmpPath)

	return ParseDOCX(tmpPath)
}

// CreateTempFile creates a temporary file from an io.Reader (for web uploads)
func CreateTempFile(reader io.Reader, filename string) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}

	tempFile, err := os.CreateTemp(os.TempDir(), "lexidrill-*-"+filename)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tempFile.Close()

	written, err := io.Copy(tempFile, io.LimitReader(reader, MaxFileSize+1))
	if err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	if written > MaxFileSize {
		os.Remove(tempFile.Name())
		return "", tooLarge(written)
	}

	return tempFile.Name(), nil
}

// CleanupTempFile removes a temporary file
func CleanupTempFile(filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp file: %w", err)
	}
	return nil
}
