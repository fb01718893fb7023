// Package extractor converts stored document bytes into plain text for the
// similarity pipeline. It understands plain text and .docx archives; anything
// else is rejected with a ParseError.
package extractor

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// ParseError reports that a document could not be read as text. It is the
// single failure type for extraction; callers decide whether it aborts the
// whole operation (target document) or just skips one peer.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Extractor converts document bytes into plain text.
type Extractor struct {
	logger zerolog.Logger
}

// New builds an extractor.
func New(logger zerolog.Logger) *Extractor {
	return &Extractor{
		logger: logger.With().Str("component", "extractor").Logger(),
	}
}

// Extract returns the plain-text content of the document. name is used only
// for error reporting.
func (x *Extractor) Extract(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ParseError{Name: name, Err: fmt.Errorf("empty document")}
	}

	detected := mimetype.Detect(data)

	switch {
	case detected.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		text, err := extractDocx(data)
		if err != nil {
			return "", &ParseError{Name: name, Err: err}
		}
		return text, nil
	case detected.Is("application/zip"):
		// Word documents saved by some tools detect as bare zip archives.
		text, err := extractDocx(data)
		if err != nil {
			return "", &ParseError{Name: name, Err: err}
		}
		return text, nil
	case strings.HasPrefix(detected.String(), "text/"):
		return string(data), nil
	default:
		x.logger.Debug().Str("name", name).Str("mime", detected.String()).Msg("unsupported document type")
		return "", &ParseError{Name: name, Err: fmt.Errorf("unsupported document type %s", detected.String())}
	}
}
