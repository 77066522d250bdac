package library

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteExport writes one tab-separated line per book, sorted by id:
// id, title, author, pages, copies.
func WriteExport(w io.Writer, books []Book) error {
	sorted := append([]Book(nil), books...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	bw := bufio.NewWriter(w)
	for _, b := range sorted {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%d\t%d\n", b.ID, b.Title, b.Author, b.Pages, b.Copies); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseExport reads the format written by WriteExport. Blank lines are skipped.
func ParseExport(r io.Reader) ([]Book, error) {
	var books []Book
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		b, err := parseExportLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		books = append(books, b)
	}
	return books, sc.Err()
}

func parseExportLine(text string) (Book, error) {
	fields := strings.Split(text, "\t")
	if len(fields) != 5 {
		return Book{}, fmt.Errorf("want 5 tab-separated fields, got %d", len(fields))
	}
	pages, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return Book{}, fmt.Errorf("pages: %w", err)
	}
	copies, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil {
		return Book{}, fmt.Errorf("copies: %w", err)
	}
	return Book{
		ID:     strings.TrimSpace(fields[0]),
		Title:  fields[1],
		Author: fields[2],
		Pages:  pages,
		Copies: copies,
	}, nil
}
