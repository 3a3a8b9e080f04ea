package parser

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// ParseTextFile reads a UTF-8 plain text file.
func ParseTextFile(filePath string) (string, error) {
	if err := ValidateFileSize(filePath); err != nil {
		return "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open text file: %w", err)
	}
	defer f.Close()

	return parseText(f)
}

func parseText(reader io.Reader) (string, error) {
	content, err := io.ReadAll(io.LimitReader(reader, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	if len(content) > MaxFileSize {
		return "", tooLarge(int64(len(content)))
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("text is not valid UTF-8")
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", fmt.Errorf("%w in text file", ErrNoText)
	}
	return text, nil
}
