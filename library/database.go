package library

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/blake2b"
)

// Database is the SQLite-backed PersistenceGateway.
type Database struct {
	db *sql.DB

	insertBookStmt *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.insertBookStmt != nil {
		d.insertBookStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

const (
	metaSchemaVersion = "schema_version"
	metaSeeded        = "seeded"
	metaDigest        = "snapshot_digest"
)

func applyMigrations(db *sql.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key=?;`, metaSchemaVersion).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            pages INTEGER NOT NULL CHECK (pages >= 0),
            copies INTEGER NOT NULL CHECK (copies >= 0)
        );`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if err := setMeta(tx, metaSchemaVersion, fmt.Sprint(schemaVersion)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setMeta(x execer, key, value string) error {
	_, err := x.Exec(`INSERT INTO meta(key,value) VALUES(?,?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, key, value)
	return err
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.insertBookStmt, err = d.db.Prepare(`INSERT INTO books(id,title,author,pages,copies) VALUES(?,?,?,?,?)`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Snapshot load/save
// ---------------------------------------------------------------------------

// Load returns every stored book. The first load of a fresh database writes
// and returns the seed catalogue; a catalogue later saved empty stays empty.
func (d *Database) Load(ctx context.Context) (Snapshot, error) {
	var seeded string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, metaSeeded).Scan(&seeded)
	if errors.Is(err, sql.ErrNoRows) {
		if err := d.writeSnapshot(ctx, SeedSnapshot(), true); err != nil {
			return nil, fmt.Errorf("seed catalogue: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, `SELECT id,title,author,pages,copies FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s := make(Snapshot)
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Pages, &b.Copies); err != nil {
			return nil, err
		}
		s[b.ID] = b
	}
	return s, rows.Err()
}

// Save overwrites the stored catalogue with s. A snapshot identical to the
// one last written is not written again.
func (d *Database) Save(ctx context.Context, s Snapshot) error {
	var stored string
	_ = d.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, metaDigest).Scan(&stored)
	if stored != "" && stored == snapshotDigest(s) {
		return nil
	}
	return d.writeSnapshot(ctx, s, false)
}

func (d *Database) writeSnapshot(ctx context.Context, s Snapshot, seed bool) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM books`); err != nil {
		return err
	}
	insert := tx.StmtContext(ctx, d.insertBookStmt)
	for _, b := range s.Books() {
		if _, err := insert.ExecContext(ctx, b.ID, b.Title, b.Author, b.Pages, b.Copies); err != nil {
			return fmt.Errorf("insert %s: %w", b.ID, err)
		}
	}
	if err := setMeta(tx, metaDigest, snapshotDigest(s)); err != nil {
		return err
	}
	if seed {
		if err := setMeta(tx, metaSeeded, "1"); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// snapshotDigest hashes the snapshot in id order so equal catalogues hash equal.
func snapshotDigest(s Snapshot) string {
	h, _ := blake2b.New256(nil)
	for _, b := range s.Books() {
		fmt.Fprintf(h, "%q\t%q\t%q\t%d\t%d\n", b.ID, b.Title, b.Author, b.Pages, b.Copies)
	}
	return hex.EncodeToString(h.Sum(nil))
}
