package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONStore keeps the catalogue in a single indented JSON file mapping book
// id to its fields.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore { return &JSONStore{path: path} }

// Load reads the file, writing the seed catalogue first if it does not exist.
func (s *JSONStore) Load(ctx context.Context) (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		seed := SeedSnapshot()
		if err := s.Save(ctx, seed); err != nil {
			return nil, fmt.Errorf("seed catalogue: %w", err)
		}
		return seed, nil
	}
	if err != nil {
		return nil, err
	}

	var records map[string]jsonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	snap := make(Snapshot, len(records))
	for id, r := range records {
		b, err := r.book(id)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.path, err)
		}
		snap[id] = b
	}
	return snap, nil
}

// jsonRecord is the on-disk shape of one book. The map key is authoritative
// for the id, and a record without a copies field holds a single copy.
type jsonRecord struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Pages  int    `json:"pages"`
	Copies *int   `json:"copies"`
}

func (r jsonRecord) book(id string) (Book, error) {
	b := Book{ID: id, Title: r.Title, Author: r.Author, Pages: r.Pages, Copies: 1}
	if r.Copies != nil {
		b.Copies = *r.Copies
	}
	if b.Pages < 0 || b.Copies < 0 {
		return Book{}, fmt.Errorf("book %s: %w", id, ErrInvalidQuantity)
	}
	return b, nil
}

// Save replaces the file atomically.
func (s *JSONStore) Save(_ context.Context, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *JSONStore) Close() error { return nil }
