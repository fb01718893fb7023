package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const wordDocumentPath = "word/document.xml"

// extractDocx pulls the raw text out of a .docx archive: the text runs of
// word/document.xml concatenated, with paragraph boundaries as newlines.
func extractDocx(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}

	var document *zip.File
	for _, file := range archive.File {
		if file.Name == wordDocumentPath {
			document = file
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("archive has no %s", wordDocumentPath)
	}

	reader, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", wordDocumentPath, err)
	}
	defer reader.Close()

	return readDocumentXML(reader)
}

// readDocumentXML walks the WordprocessingML stream collecting character data
// inside <w:t> runs and emitting a newline at every paragraph end.
func readDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var builder strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document xml: %w", err)
		}

		switch element := token.(type) {
		case xml.StartElement:
			if element.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch element.Name.Local {
			case "t":
				inText = false
			case "p":
				builder.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				builder.Write(element)
			}
		}
	}

	return strings.TrimSpace(builder.String()), nil
}
