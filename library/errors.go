package library

import "errors"

var (
	// ErrDuplicateID is returned when adding a book whose ID is already catalogued.
	ErrDuplicateID = errors.New("book id already exists")
	// ErrNotFound is returned for operations on an unknown book ID.
	ErrNotFound = errors.New("book not found")
	// ErrQueueEmpty is informational: a processing step found no pending request.
	ErrQueueEmpty = errors.New("request queue is empty")
	// ErrNothingToUndo is informational: the history ledger is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrInvalidQuantity rejects negative pages or copies, from callers or from a loaded store.
	ErrInvalidQuantity = errors.New("pages and copies must not be negative")

	// ErrEmptyID is returned when a book is added without an id.
	ErrEmptyID = errors.New("book id cannot be empty")
	// ErrEmptyRequester is returned when a borrow request names no one.
	ErrEmptyRequester = errors.New("requester name cannot be empty")
)
