package library

import (
	"context"
	"fmt"
	"sort"
)

// PersistenceGateway loads and saves full catalogue snapshots. Save always
// overwrites the stored state; there is no incremental diffing.
type PersistenceGateway interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
	Close() error
}

// SeedSnapshot is what a store holds the first time it is opened.
func SeedSnapshot() Snapshot {
	return Snapshot{
		"B001": {ID: "B001", Title: "Pemrograman Python", Author: "Andi", Pages: 320, Copies: 3},
		"B002": {ID: "B002", Title: "Struktur Data & Algoritma", Author: "Budi", Pages: 280, Copies: 2},
		"B003": {ID: "B003", Title: "Basis Data", Author: "Citra", Pages: 240, Copies: 1},
	}
}

// OpenGateway opens the store selected by cfg.Backend.
func OpenGateway(cfg Config) (PersistenceGateway, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		db, err := NewDatabase(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendJSON:
		return NewJSONStore(cfg.DBPath), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// sortedIDs returns the snapshot keys in ascending order.
func (s Snapshot) sortedIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Books returns the snapshot's books sorted by id.
func (s Snapshot) Books() []Book {
	books := make([]Book, 0, len(s))
	for _, id := range s.sortedIDs() {
		books = append(books, s[id])
	}
	return books
}
