package library

import (
	"fmt"
	"time"
)

// Book represents one catalogue record and the number of copies currently on the shelf.
// Copies is the only field circulation ever touches.
type Book struct {
	ID     string `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Pages  int    `json:"pages"`
	Copies int    `json:"copies"`
}

// BookPatch carries the fields of an edit. Nil fields are left alone.
type BookPatch struct {
	Title  *string
	Author *string
	Pages  *int
	Copies *int
}

func (p BookPatch) apply(b Book) Book {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Pages != nil {
		b.Pages = *p.Pages
	}
	if p.Copies != nil {
		b.Copies = *p.Copies
	}
	return b
}

// Snapshot is the full persisted state of a catalogue, keyed by book ID.
type Snapshot map[string]Book

// BorrowRequest is a pending request to borrow one copy of a book.
type BorrowRequest struct {
	RequestID   string
	BookID      string
	Requester   string
	SubmittedAt time.Time
}

// HistoryKind names the kind of action a history entry reverses.
type HistoryKind string

const (
	KindAdd          HistoryKind = "add"
	KindDelete       HistoryKind = "delete"
	KindEdit         HistoryKind = "edit"
	KindBorrow       HistoryKind = "borrow"
	KindBorrowFailed HistoryKind = "borrow_failed"
	KindReturn       HistoryKind = "return"
)

// HistoryEntry is one reversible action on the ledger. The set of
// implementations is closed to this package.
type HistoryEntry interface {
	Kind() HistoryKind
	Time() time.Time
	Describe() string
	isHistoryEntry()
}

// AddEntry records a book that was added.
type AddEntry struct {
	Book Book
	At   time.Time
}

// DeleteEntry records the book as it was just before deletion.
type DeleteEntry struct {
	Book Book
	At   time.Time
}

// EditEntry records the before and after images of an edit.
type EditEntry struct {
	Before Book
	After  Book
	At     time.Time
}

// BorrowEntry records a request that took a copy off the shelf.
type BorrowEntry struct {
	Request BorrowRequest
	At      time.Time
}

// BorrowFailedEntry records a request that was consumed without taking a copy.
type BorrowFailedEntry struct {
	Request BorrowRequest
	At      time.Time
}

// ReturnEntry records a copy given back to the shelf.
type ReturnEntry struct {
	BookID string
	At     time.Time
}

func (AddEntry) Kind() HistoryKind          { return KindAdd }
func (DeleteEntry) Kind() HistoryKind       { return KindDelete }
func (EditEntry) Kind() HistoryKind         { return KindEdit }
func (BorrowEntry) Kind() HistoryKind       { return KindBorrow }
func (BorrowFailedEntry) Kind() HistoryKind { return KindBorrowFailed }
func (ReturnEntry) Kind() HistoryKind       { return KindReturn }

func (e AddEntry) Time() time.Time          { return e.At }
func (e DeleteEntry) Time() time.Time       { return e.At }
func (e EditEntry) Time() time.Time         { return e.At }
func (e BorrowEntry) Time() time.Time       { return e.At }
func (e BorrowFailedEntry) Time() time.Time { return e.At }
func (e ReturnEntry) Time() time.Time       { return e.At }

func (e AddEntry) Describe() string    { return fmt.Sprintf("add %s", e.Book.ID) }
func (e DeleteEntry) Describe() string { return fmt.Sprintf("delete %s", e.Book.ID) }
func (e EditEntry) Describe() string   { return fmt.Sprintf("edit %s", e.Before.ID) }
func (e BorrowEntry) Describe() string {
	return fmt.Sprintf("borrow %s by %s", e.Request.BookID, e.Request.Requester)
}
func (e BorrowFailedEntry) Describe() string {
	return fmt.Sprintf("borrow %s by %s failed", e.Request.BookID, e.Request.Requester)
}
func (e ReturnEntry) Describe() string { return fmt.Sprintf("return %s", e.BookID) }

func (AddEntry) isHistoryEntry()          {}
func (DeleteEntry) isHistoryEntry()       {}
func (EditEntry) isHistoryEntry()         {}
func (BorrowEntry) isHistoryEntry()       {}
func (BorrowFailedEntry) isHistoryEntry() {}
func (ReturnEntry) isHistoryEntry()       {}
