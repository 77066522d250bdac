package library

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteExportSortsByID(t *testing.T) {
	var buf bytes.Buffer
	books := []Book{
		{ID: "B003", Title: "Basis Data", Author: "Citra", Pages: 240, Copies: 1},
		{ID: "B001", Title: "Pemrograman Python", Author: "Andi", Pages: 320, Copies: 3},
	}
	require.NoError(t, WriteExport(&buf, books))

	want := "B001\tPemrograman Python\tAndi\t320\t3\n" +
		"B003\tBasis Data\tCitra\t240\t1\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, "B003", books[0].ID, "input is not reordered")
}

func TestParseExport(t *testing.T) {
	in := "B001\tPemrograman Python\tAndi\t320\t3\r\n\nB002\tStruktur Data & Algoritma\tBudi\t280\t2\n"
	books, err := ParseExport(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Book{
		{ID: "B001", Title: "Pemrograman Python", Author: "Andi", Pages: 320, Copies: 3},
		{ID: "B002", Title: "Struktur Data & Algoritma", Author: "Budi", Pages: 280, Copies: 2},
	}, books)
}

func TestParseExportErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"too few fields", "B001\tTitle\n", "line 1"},
		{"bad pages", "B001\tT\tA\tmany\t1\n", "pages"},
		{"bad copies", "\nB001\tT\tA\t1\tx\n", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExport(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
