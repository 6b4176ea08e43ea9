package srs

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Library System SRS</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Users can </w:t></w:r><w:r><w:t>borrow books.</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Value</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   documentXML,
	})

	text, err := Extract("library.docx", data)

	require.NoError(t, err)
	assert.Equal(t, "Library System SRS\nUsers can borrow books.\n\nName\tValue", text)
}

func TestExtractPlainText(t *testing.T) {
	text, err := Extract("srs.md", []byte("# SRS\nThe system shall..."))
	require.NoError(t, err)
	assert.Equal(t, "# SRS\nThe system shall...", text)
}

func TestExtractErrors(t *testing.T) {
	testCases := []struct {
		name string
		file string
		data []byte
		want error
	}{
		{"empty text", "srs.txt", []byte("  \n\t"), ErrEmptyDocument},
		{"not a zip", "srs.docx", []byte("plain text"), ErrInvalidDocx},
		{"missing document part", "srs.docx", buildDocx(t, map[string]string{"word/styles.xml": "<x/>"}), ErrInvalidDocx},
		{
			"docx without text",
			"srs.DOCX",
			buildDocx(t, map[string]string{"word/document.xml": `<w:document xmlns:w="` + wordNS + `"><w:body/></w:document>`}),
			ErrEmptyDocument,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract(tc.file, tc.data)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	docx := filepath.Join(dir, "spec.docx")
	require.NoError(t, os.WriteFile(docx, buildDocx(t, map[string]string{"word/document.xml": documentXML}), 0o600))

	text, err := Load(docx)
	require.NoError(t, err)
	assert.Contains(t, text, "Users can borrow books.")

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestIsDocx(t *testing.T) {
	assert.True(t, IsDocx("a.docx"))
	assert.True(t, IsDocx("/tmp/A.DOCX"))
	assert.False(t, IsDocx("a.doc"))
	assert.False(t, IsDocx("docx"))
}
