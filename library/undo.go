package library

import (
	"errors"
	"fmt"
)

// UndoEngine reverses the newest history entry. Reversals are not recorded,
// so there is no redo.
type UndoEngine struct {
	catalog *Catalog
	ledger  *HistoryLedger
}

func NewUndoEngine(catalog *Catalog, ledger *HistoryLedger) *UndoEngine {
	return &UndoEngine{catalog: catalog, ledger: ledger}
}

// UndoLast pops one entry and applies its inverse. The entry is consumed even
// when the inverse cannot be applied because the book changed underneath it;
// the returned error then says why.
func (u *UndoEngine) UndoLast() (HistoryEntry, error) {
	e, ok := u.ledger.Pop()
	if !ok {
		return nil, ErrNothingToUndo
	}
	if err := u.reverse(e); err != nil {
		return e, fmt.Errorf("undo %s: %w", e.Kind(), err)
	}
	return e, nil
}

func (u *UndoEngine) reverse(e HistoryEntry) error {
	switch e := e.(type) {
	case AddEntry:
		// Best effort by id; the book may already be gone.
		if _, err := u.catalog.remove(e.Book.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return nil
	case DeleteEntry:
		return u.catalog.insert(e.Book)
	case EditEntry:
		return u.catalog.replace(e.Before)
	case BorrowEntry:
		_, err := u.catalog.adjustCopies(e.Request.BookID, 1)
		return err
	case BorrowFailedEntry:
		return nil
	case ReturnEntry:
		_, err := u.catalog.adjustCopies(e.BookID, -1)
		return err
	default:
		return fmt.Errorf("unknown history entry %T", e)
	}
}
