package library

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// Catalog owns the set of books. Mutating operations that a caller can
// undo append an entry to the attached ledger; the unrecorded variants
// (insert, remove, replace, adjustCopies) are what the undo engine uses.
type Catalog struct {
	books  map[string]Book
	order  []string
	ledger *HistoryLedger
	now    func() time.Time
}

// NewCatalog returns an empty catalogue recording into ledger. A nil
// ledger disables recording.
func NewCatalog(ledger *HistoryLedger) *Catalog {
	return &Catalog{
		books:  make(map[string]Book),
		ledger: ledger,
		now:    time.Now,
	}
}

func (c *Catalog) record(e HistoryEntry) {
	if c.ledger != nil {
		c.ledger.Push(e)
	}
}

// ------------------ Recorded operations ------------------

// Add inserts b and records an AddEntry.
func (c *Catalog) Add(b Book) error {
	if err := c.insert(b); err != nil {
		return err
	}
	c.record(AddEntry{Book: b, At: c.now()})
	return nil
}

// Update applies the non-nil fields of patch and records the before and after images.
func (c *Catalog) Update(id string, patch BookPatch) (Book, error) {
	before, ok := c.books[id]
	if !ok {
		return Book{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	after := patch.apply(before)
	c.books[id] = after
	c.record(EditEntry{Before: before, After: after, At: c.now()})
	return after, nil
}

// Delete removes the book and records the removed snapshot.
func (c *Catalog) Delete(id string) (Book, error) {
	b, err := c.remove(id)
	if err != nil {
		return Book{}, err
	}
	c.record(DeleteEntry{Book: b, At: c.now()})
	return b, nil
}

// GiveReturn puts one copy back on the shelf. No upper bound is enforced.
func (c *Catalog) GiveReturn(id string) (Book, error) {
	b, err := c.adjustCopies(id, 1)
	if err != nil {
		return Book{}, err
	}
	c.record(ReturnEntry{BookID: id, At: c.now()})
	return b, nil
}

// AttemptBorrow takes one copy if any is available. Running out of stock is
// reported as false, not as an error. The caller records the outcome.
func (c *Catalog) AttemptBorrow(id string) (bool, error) {
	b, ok := c.books[id]
	if !ok {
		return false, fmt.Errorf("borrow %s: %w", id, ErrNotFound)
	}
	if b.Copies <= 0 {
		return false, nil
	}
	b.Copies--
	c.books[id] = b
	return true, nil
}

// ------------------ Queries ------------------

// Get returns a copy of the book with the given id.
func (c *Catalog) Get(id string) (Book, bool) {
	b, ok := c.books[id]
	return b, ok
}

// Find returns the books whose title or author contains query, ignoring
// case, in catalogue order. An empty query matches everything.
func (c *Catalog) Find(query string) []Book {
	q := strings.ToLower(query)
	res := make([]Book, 0)
	for _, id := range c.order {
		b := c.books[id]
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
			res = append(res, b)
		}
	}
	return res
}

// List returns every book in catalogue order.
func (c *Catalog) List() []Book {
	res := make([]Book, 0, len(c.order))
	for _, id := range c.order {
		res = append(res, c.books[id])
	}
	return res
}

func (c *Catalog) Len() int { return len(c.books) }

// Snapshot copies the current state for persistence.
func (c *Catalog) Snapshot() Snapshot {
	s := make(Snapshot, len(c.books))
	for id, b := range c.books {
		s[id] = b
	}
	return s
}

// Load replaces the contents with s without recording history. Catalogue
// order follows the sorted ids.
func (c *Catalog) Load(s Snapshot) {
	c.books = make(map[string]Book, len(s))
	c.order = make([]string, 0, len(s))
	for id, b := range s {
		b.ID = id
		c.books[id] = b
		c.order = append(c.order, id)
	}
	sort.Strings(c.order)
}

// ------------------ Unrecorded primitives ------------------

func (c *Catalog) insert(b Book) error {
	if _, ok := c.books[b.ID]; ok {
		return fmt.Errorf("add %s: %w", b.ID, ErrDuplicateID)
	}
	c.books[b.ID] = b
	c.order = append(c.order, b.ID)
	return nil
}

func (c *Catalog) remove(id string) (Book, error) {
	b, ok := c.books[id]
	if !ok {
		return Book{}, fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	delete(c.books, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	return b, nil
}

// replace restores the mutable fields of b onto the existing record b.ID.
func (c *Catalog) replace(b Book) error {
	if _, ok := c.books[b.ID]; !ok {
		return fmt.Errorf("restore %s: %w", b.ID, ErrNotFound)
	}
	c.books[b.ID] = b
	return nil
}

// adjustCopies adds delta to the copy count, flooring the result at zero.
func (c *Catalog) adjustCopies(id string, delta int) (Book, error) {
	b, ok := c.books[id]
	if !ok {
		return Book{}, fmt.Errorf("adjust copies of %s: %w", id, ErrNotFound)
	}
	b.Copies = max(b.Copies+delta, 0)
	c.books[id] = b
	return b, nil
}
