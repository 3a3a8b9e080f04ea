// Package parser extracts plain text from documents a learner imports words from.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileType represents the type of document file
type FileType int

const (
	TypeUnknown FileType = iota
	TypePDF
	TypeDOCX
	TypeText
)

// MaxFileSize is the maximum allowed file size (10MB)
const MaxFileSize = 10 * 1024 * 1024

var (
	// ErrUnsupportedType is returned for files that are not .pdf, .docx or .txt.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrNoText is returned when a document holds no extractable text.
	ErrNoText = errors.New("no text content found")

	// ErrTooLarge is returned for files above MaxFileSize.
	ErrTooLarge = errors.New("file too large")
)

// DetectFileType determines the file type based on extension
func DetectFileType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return TypePDF
	case ".docx":
		return TypeDOCX
	case ".txt":
		return TypeText
	default:
		return TypeUnknown
	}
}

// Supported reports whether filename has an extension ParseDocument handles.
func Supported(filename string) bool {
	return DetectFileType(filename) != TypeUnknown
}

// ValidateFileSize checks if a file is within the size limit
func ValidateFileSize(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Size() > MaxFileSize {
		return tooLarge(info.Size())
	}

	return nil
}

func tooLarge(size int64) error {
	return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrTooLarge, size, MaxFileSize)
}

// ValidateFilename checks for path traversal and other malicious patterns
func ValidateFilename(filename string) error {
	if strings.Contains(filename, "..") {
		return fmt.Errorf("filename contains path traversal: ..")
	}

	if strings.HasPrefix(filename, "/") || strings.HasPrefix(filename, "\\") {
		return fmt.Errorf("filename cannot be an absolute path")
	}

	if strings.ContainsRune(filename, '\x00') {
		return fmt.Errorf("filename contains null byte")
	}

	if strings.ContainsAny(filename, "\r\n") {
		return fmt.Errorf("filename contains newline character")
	}

	return nil
}

// ParseDocument detects the file type and extracts its text.
func ParseDocument(filePath string) (string, error) {
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("file not found: %w", err)
	}

	if err := ValidateFileSize(filePath); err != nil {
		return "", err
	}

	switch DetectFileType(filePath) {
	case TypePDF:
		return ParsePDF(filePath)
	case TypeDOCX:
		return ParseDOCX(filePath)
	case TypeText:
		return ParseTextFile(filePath)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filePath))
	}
}

// ParseUpload extracts text from an uploaded document. The type is taken
// from filename.
func ParseUpload(reader io.Reader, filename string, size int64) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}
	if size > MaxFileSize {
		return "", tooLarge(size)
	}

	switch DetectFileType(filename) {
	case TypePDF:
		return ParsePDFFromReader(reader, size)
	case TypeDOCX:
		return ParseDOCXFromReader(reader, filename)
	case TypeText:
		return parseText(reader)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filename))
	}
}
