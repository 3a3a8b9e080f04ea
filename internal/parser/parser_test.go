package parser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0600))
	return path
}

// TestParseInvalidFile tests handling corrupted files
func TestParseInvalidFile(t *testing.T) {
	path := writeFile(t, "corrupted.pdf", []byte("This is not a valid PDF file"))

	_, err := ParsePDF(path)
	assert.Error(t, err)
}

// TestParseNonexistentFile tests handling missing files
func TestParseNonexistentFile(t *testing.T) {
	_, err := ParsePDF("/nonexistent/file.pdf")
	assert.Error(t, err)

	_, err = ParseDOCX("/nonexistent/file.docx")
	assert.Error(t, err)

	_, err = ParseTextFile("/nonexistent/file.txt")
	assert.Error(t, err)
}

// TestParseEmptyPDF tests handling a PDF that is only a header
func TestParseEmptyPDF(t *testing.T) {
	path := writeFile(t, "empty.pdf", []byte("%PDF-1.4\n%%EOF"))

	_, err := ParsePDF(path)
	assert.Error(t, err)
}

func TestParseInvalidDOCX(t *testing.T) {
	path := writeFile(t, "broken.docx", []byte("not a zip archive"))

	_, err := ParseDOCX(path)
	assert.Error(t, err)
}

// TestParseOversizedFile tests rejecting files over the size limit
func TestParseOversizedFile(t *testing.T) {
	path := writeFile(t, "oversize.pdf", make([]byte, MaxFileSize+1))

	_, err := ParsePDF(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestParseTextFile(t *testing.T) {
	path := writeFile(t, "lesson.txt", []byte("\n  яблоко = apple\nкот = cat  \n"))

	text, err := ParseTextFile(path)
	require.NoError(t, err)
	assert.Equal(t, "яблоко = apple\nкот = cat", text)
}

func TestParseTextFile_Empty(t *testing.T) {
	path := writeFile(t, "blank.txt", []byte(" \n\t"))

	_, err := ParseTextFile(path)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestParseTextFile_InvalidUTF8(t *testing.T) {
	path := writeFile(t, "latin1.txt", []byte{0xff, 0xfe, 0x41})

	_, err := ParseTextFile(path)
	assert.Error(t, err)
}

// TestDetectFileType tests file type detection
func TestDetectFileType(t *testing.T) {
	tests := []struct {
		filename string
		expected FileType
	}{
		{"document.pdf", TypePDF},
		{"notes.PDF", TypePDF},
		{"lesson.docx", TypeDOCX},
		{"file.DOCX", TypeDOCX},
		{"words.txt", TypeText},
		{"WORDS.TXT", TypeText},
		{"old.doc", TypeUnknown},
		{"no_extension", TypeUnknown},
		{"doc.pdf.bak", TypeUnknown},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, DetectFileType(tc.filename), tc.filename)
		assert.Equal(t, tc.expected != TypeUnknown, Supported(tc.filename), tc.filename)
	}
}

// TestValidateFileSize tests file size validation
func TestValidateFileSize(t *testing.T) {
	small := writeFile(t, "small.txt", []byte("small content"))
	assert.NoError(t, ValidateFileSize(small))

	large := writeFile(t, "large.txt", make([]byte, MaxFileSize+1))
	assert.ErrorIs(t, ValidateFileSize(large), ErrTooLarge)

	assert.Error(t, ValidateFileSize("/nonexistent/file.txt"))
}

// TestValidateFilename tests rejection of path traversal and control characters
func TestValidateFilename(t *testing.T) {
	tests := []struct {
		input    string
		safe     bool
		contains string
	}{
		{"normal.pdf", true, ""},
		{"my-document.docx", true, ""},
		{"../../etc/passwd", false, ".."},
		{"/etc/passwd", false, "absolute"},
		{"file\x00.pdf", false, "null"},
		{"file\n.pdf", false, "newline"},
		{".hidden.pdf", true, ""},
		{"file with spaces.pdf", true, ""},
	}

	for _, tc := range tests {
		err := ValidateFilename(tc.input)
		if tc.safe {
			assert.NoError(t, err, tc.input)
			continue
		}
		require.Error(t, err, tc.input)
		assert.Contains(t, strings.ToLower(err.Error()), tc.contains)
	}
}

// TestParseDocument tests type dispatch of the main entry point
func TestParseDocument(t *testing.T) {
	tests := []struct {
		filename    string
		expectError bool
	}{
		{"test.pdf", true},  // invalid PDF content
		{"test.docx", true}, // invalid DOCX content
		{"test.txt", false},
		{"test.rtf", true}, // unsupported type
	}

	for _, tc := range tests {
		path := writeFile(t, tc.filename, []byte("test content"))

		_, err := ParseDocument(path)
		assert.Equal(t, tc.expectError, err != nil, "%s: %v", tc.filename, err)
	}

	_, err := ParseDocument(writeFile(t, "notes.rtf", []byte("x")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParseUpload(t *testing.T) {
	content := []byte("синий = blue")

	text, err := ParseUpload(bytes.NewReader(content), "words.txt", int64(len(content)))
	require.NoError(t, err)
	assert.Equal(t, "синий = blue", text)

	_, err = ParseUpload(bytes.NewReader(content), "words.odt", int64(len(content)))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ParseUpload(bytes.NewReader(content), "../words.txt", int64(len(content)))
	assert.Error(t, err)

	_, err = ParseUpload(bytes.NewReader(content), "words.txt", MaxFileSize+1)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = ParseUpload(bytes.NewReader([]byte("garbage")), "words.pdf", 7)
	assert.Error(t, err)
}

func TestXMLText(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>яблоко</w:t></w:r><w:r><w:tab/><w:t>apple</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>кот = cat</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	assert.Equal(t, "яблоко\tapple\nкот = cat", xmlText(body))
	assert.Equal(t, "plain words", xmlText("plain words"))
	assert.Empty(t, xmlText(""))
}

func TestCreateTempFile(t *testing.T) {
	path, err := CreateTempFile(strings.NewReader("hello"), "upload.docx")
	require.NoError(t, err)
	defer CleanupTempFile(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "lexidrill-"))

	require.NoError(t, CleanupTempFile(path))
	assert.NoError(t, CleanupTempFile(path), "removing twice is not an error")

	_, err = CreateTempFile(strings.NewReader("x"), "../escape.docx")
	assert.Error(t, err)
}
