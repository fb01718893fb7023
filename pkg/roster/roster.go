// Package roster reads course-roster CSV files. Rows are consumed through a
// Scanner so callers iterate synchronously over a lazy, finite sequence and
// check one typed failure at the end, instead of juggling data and error
// callbacks.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedRoster is the single failure reported for an unreadable roster
// file. Wrapped errors carry the underlying detail.
var ErrMalformedRoster = errors.New("malformed roster csv")

// Row is one roster entry. Rows missing a name or an email are skipped during
// scanning, matching how partial CSV lines are treated on import.
type Row struct {
	Name  string
	Email string
}

// Scanner iterates over roster rows in the bufio.Scanner idiom:
//
//	s := roster.NewScanner(reader)
//	for s.Next() {
//	    row := s.Row()
//	    ...
//	}
//	if err := s.Err(); err != nil { ... }
type Scanner struct {
	reader  *csv.Reader
	columns map[string]int
	row     Row
	err     error
	done    bool
}

// NewScanner wraps the reader. The first line must be a header containing
// "name" and "email" columns, in any order and case.
func NewScanner(r io.Reader) *Scanner {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	return &Scanner{reader: reader}
}

// Next advances to the next complete row, reporting false at end of input or
// on failure. Rows lacking a name or an email are skipped silently.
func (s *Scanner) Next() bool {
	if s.done {
		return false
	}

	if s.columns == nil {
		if !s.readHeader() {
			return false
		}
	}

	for {
		record, err := s.reader.Read()
		if err == io.EOF {
			s.done = true
			return false
		}
		if err != nil {
			s.fail(err)
			return false
		}

		row := Row{
			Name:  s.field(record, "name"),
			Email: s.field(record, "email"),
		}
		if row.Name == "" || row.Email == "" {
			continue
		}

		s.row = row
		return true
	}
}

// Row returns the row read by the last successful call to Next.
func (s *Scanner) Row() Row {
	return s.row
}

// Err returns the failure that stopped scanning, if any. The result always
// matches errors.Is(err, ErrMalformedRoster).
func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) readHeader() bool {
	header, err := s.reader.Read()
	if err == io.EOF {
		s.fail(fmt.Errorf("missing header"))
		return false
	}
	if err != nil {
		s.fail(err)
		return false
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	if _, ok := columns["name"]; !ok {
		s.fail(fmt.Errorf("missing name column"))
		return false
	}
	if _, ok := columns["email"]; !ok {
		s.fail(fmt.Errorf("missing email column"))
		return false
	}

	s.columns = columns
	return true
}

func (s *Scanner) field(record []string, column string) string {
	index, ok := s.columns[column]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func (s *Scanner) fail(err error) {
	s.err = fmt.Errorf("%w: %v", ErrMalformedRoster, err)
	s.done = true
}
