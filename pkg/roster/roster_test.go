package roster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, input string) ([]Row, error) {
	t.Helper()

	scanner := NewScanner(strings.NewReader(input))
	var rows []Row
	for scanner.Next() {
		rows = append(rows, scanner.Row())
	}
	return rows, scanner.Err()
}

func TestScannerReadsRows(t *testing.T) {
	rows, err := scanAll(t, "name,email\nAlice,alice@example.com\nBob,bob@example.com\n")
	require.NoError(t, err)
	require.Equal(t, []Row{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	}, rows)
}

func TestScannerHeaderColumnsAnyOrderAndCase(t *testing.T) {
	rows, err := scanAll(t, "Email,Student ID,NAME\nalice@example.com,s-1,Alice\n")
	require.NoError(t, err)
	require.Equal(t, []Row{{Name: "Alice", Email: "alice@example.com"}}, rows)
}

func TestScannerSkipsIncompleteRows(t *testing.T) {
	input := "name,email\nAlice,alice@example.com\nNoEmail,\n,ghost@example.com\nBob,bob@example.com\n"

	rows, err := scanAll(t, input)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Alice", rows[0].Name)
	require.Equal(t, "Bob", rows[1].Name)
}

func TestScannerMissingHeaderColumn(t *testing.T) {
	rows, err := scanAll(t, "name,id\nAlice,1\n")
	require.Empty(t, rows)
	require.ErrorIs(t, err, ErrMalformedRoster)
}

func TestScannerEmptyInput(t *testing.T) {
	rows, err := scanAll(t, "")
	require.Empty(t, rows)
	require.ErrorIs(t, err, ErrMalformedRoster)
}

func TestScannerMalformedCSV(t *testing.T) {
	rows, err := scanAll(t, "name,email\n\"Alice,alice@example.com\n")
	require.Empty(t, rows)
	require.ErrorIs(t, err, ErrMalformedRoster)
}
