package extractor

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := zip.NewWriter(buf)

	entry, err := writer.Create(wordDocumentPath)
	require.NoError(t, err)
	_, err = entry.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	x := New(zerolog.Nop())

	text, err := x.Extract("essay.txt", []byte("The quick brown fox."))
	require.NoError(t, err)
	require.Equal(t, "The quick brown fox.", text)
}

func TestExtractDocx(t *testing.T) {
	x := New(zerolog.Nop())

	document := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := x.Extract("essay.docx", buildDocx(t, document))
	require.NoError(t, err)
	require.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestExtractEmptyDocument(t *testing.T) {
	x := New(zerolog.Nop())

	_, err := x.Extract("empty.txt", nil)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "empty.txt", parseErr.Name)
}

func TestExtractZipWithoutDocument(t *testing.T) {
	x := New(zerolog.Nop())

	buf := &bytes.Buffer{}
	writer := zip.NewWriter(buf)
	entry, err := writer.Create("unrelated.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("not a word file"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	_, err = x.Extract("fake.docx", buf.Bytes())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestExtractUnsupportedType(t *testing.T) {
	x := New(zerolog.Nop())

	pngHeader := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	_, err := x.Extract("image.png", pngHeader)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
