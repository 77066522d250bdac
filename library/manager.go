package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LibraryManager is the façade the CLI talks to. It serialises every
// operation on the catalogue, queue and ledger behind one mutex so the
// background tick and the caller never interleave, and saves the catalogue
// after each mutation.
type LibraryManager struct {
	mu        sync.Mutex
	catalog   *Catalog
	queue     *RequestQueue
	ledger    *HistoryLedger
	processor *CirculationProcessor
	undo      *UndoEngine
	scheduler *Scheduler

	gateway PersistenceGateway
	logger  *slog.Logger
	onTick  func(StepResult)
	now     func() time.Time
}

// Option configures a LibraryManager.
type Option func(*LibraryManager)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *LibraryManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTickObserver registers fn to be called after every tick that processed a request.
func WithTickObserver(fn func(StepResult)) Option {
	return func(m *LibraryManager) { m.onTick = fn }
}

// WithClock overrides the time source used for requests and history entries.
func WithClock(now func() time.Time) Option {
	return func(m *LibraryManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewLibraryManager loads the catalogue from gw and wires the circulation
// components around it. The manager owns gw from here on.
func NewLibraryManager(ctx context.Context, gw PersistenceGateway, opts ...Option) (*LibraryManager, error) {
	m := &LibraryManager{
		gateway: gw,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	snap, err := gw.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}

	m.ledger = NewHistoryLedger()
	m.queue = NewRequestQueue()
	m.catalog = NewCatalog(m.ledger)
	m.catalog.now = m.now
	m.catalog.Load(snap)
	m.processor = NewCirculationProcessor(m.catalog, m.queue, m.ledger, m.logger)
	m.processor.now = m.now
	m.undo = NewUndoEngine(m.catalog, m.ledger)

	m.logger.Debug("catalogue loaded", "books", m.catalog.Len())
	return m, nil
}

// OpenLibraryManager opens the store described by cfg and loads it.
func OpenLibraryManager(ctx context.Context, cfg Config, opts ...Option) (*LibraryManager, error) {
	gw, err := OpenGateway(cfg)
	if err != nil {
		return nil, err
	}
	m, err := NewLibraryManager(ctx, gw, opts...)
	if err != nil {
		gw.Close()
		return nil, err
	}
	return m, nil
}

// Close stops background processing and closes the store.
func (m *LibraryManager) Close() error {
	m.StopAutoProcessing()
	return m.gateway.Close()
}

// persist saves the catalogue. The in-memory state stays authoritative when
// the save fails, so the error is only logged. Callers hold m.mu.
func (m *LibraryManager) persist(ctx context.Context) {
	if err := m.gateway.Save(ctx, m.catalog.Snapshot()); err != nil {
		m.logger.Error("save catalogue", "error", err)
	}
}

// ------------------ Book helpers ------------------

func validateBook(b Book) error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyID
	}
	if b.Pages < 0 || b.Copies < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

func validatePatch(p BookPatch) error {
	if (p.Pages != nil && *p.Pages < 0) || (p.Copies != nil && *p.Copies < 0) {
		return ErrInvalidQuantity
	}
	return nil
}

func (m *LibraryManager) AddBook(ctx context.Context, b Book) error {
	b.ID = strings.TrimSpace(b.ID)
	if err := validateBook(b); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.catalog.Add(b); err != nil {
		return err
	}
	m.logger.Info("book added", "book_id", b.ID)
	m.persist(ctx)
	return nil
}

func (m *LibraryManager) UpdateBook(ctx context.Context, id string, patch BookPatch) (Book, error) {
	if err := validatePatch(patch); err != nil {
		return Book{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.catalog.Update(id, patch)
	if err != nil {
		return Book{}, err
	}
	m.logger.Info("book updated", "book_id", id)
	m.persist(ctx)
	return b, nil
}

func (m *LibraryManager) DeleteBook(ctx context.Context, id string) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.catalog.Delete(id)
	if err != nil {
		return Book{}, err
	}
	m.logger.Info("book deleted", "book_id", id)
	m.persist(ctx)
	return b, nil
}

func (m *LibraryManager) GetBook(id string) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.catalog.Get(id)
	if !ok {
		return Book{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return b, nil
}

// ListBooks returns every book sorted by id.
func (m *LibraryManager) ListBooks() []Book {
	m.mu.Lock()
	books := m.catalog.List()
	m.mu.Unlock()
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books
}

// SearchBooks matches title or author, case-insensitively, in catalogue order.
func (m *LibraryManager) SearchBooks(q string) []Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog.Find(strings.TrimSpace(q))
}

// ------------------ Circulation ------------------

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "R" + id.String()
}

// RequestBorrow queues a borrow request and returns it with its 1-based
// position in the queue. The book must exist now; it may be gone by the time
// the request is processed.
func (m *LibraryManager) RequestBorrow(bookID, requester string) (BorrowRequest, int, error) {
	requester = strings.TrimSpace(requester)
	if requester == "" {
		return BorrowRequest{}, 0, ErrEmptyRequester
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.catalog.Get(bookID); !ok {
		return BorrowRequest{}, 0, fmt.Errorf("request %s: %w", bookID, ErrNotFound)
	}
	req := BorrowRequest{
		RequestID:   newRequestID(),
		BookID:      bookID,
		Requester:   requester,
		SubmittedAt: m.now(),
	}
	m.queue.Enqueue(req)
	m.logger.Debug("borrow request queued", "request_id", req.RequestID, "book_id", bookID, "requester", requester)
	return req, m.queue.Len(), nil
}

// PendingRequests returns the queued requests, oldest first.
func (m *LibraryManager) PendingRequests() []BorrowRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.PeekAll()
}

// ProcessNext handles exactly one queued request. It returns ErrQueueEmpty
// when there is nothing to process.
func (m *LibraryManager) ProcessNext(ctx context.Context) (StepResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, err := m.processor.Step()
	if err != nil {
		return res, err
	}
	m.logger.Info("borrow request processed",
		"request_id", res.Request.RequestID, "book_id", res.Request.BookID, "outcome", res.Outcome.String())
	if res.Outcome == OutcomeBorrowed {
		m.persist(ctx)
	}
	return res, nil
}

// ReturnBook puts one copy of the book back on the shelf.
func (m *LibraryManager) ReturnBook(ctx context.Context, id string) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.catalog.GiveReturn(id)
	if err != nil {
		return Book{}, err
	}
	m.logger.Info("book returned", "book_id", id, "copies", b.Copies)
	m.persist(ctx)
	return b, nil
}

// UndoLast reverses the newest history entry.
func (m *LibraryManager) UndoLast(ctx context.Context) (HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.undo.UndoLast()
	if errors.Is(err, ErrNothingToUndo) {
		return nil, err
	}
	if err != nil {
		m.logger.Warn("undo applied partially", "entry", e.Describe(), "error", err)
		return e, err
	}
	m.logger.Info("undone", "entry", e.Describe())
	m.persist(ctx)
	return e, nil
}

// History returns up to n entries, newest first.
func (m *LibraryManager) History(n int) []HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Recent(n)
}

// Export writes the catalogue to w in the tab-separated export format.
func (m *LibraryManager) Export(w io.Writer) error {
	return WriteExport(w, m.ListBooks())
}

// ------------------ Background processing ------------------

// StartAutoProcessing processes one queued request every interval, the first
// after firstDelay, until StopAutoProcessing, Close, or ctx is done.
func (m *LibraryManager) StartAutoProcessing(ctx context.Context, interval, firstDelay time.Duration) {
	m.mu.Lock()
	if m.scheduler != nil && m.scheduler.Running() {
		m.mu.Unlock()
		return
	}
	s := NewScheduler(interval, firstDelay, func() { m.tick(ctx) })
	m.scheduler = s
	m.mu.Unlock()
	s.Start(ctx)
}

// StopAutoProcessing cancels future ticks and waits for a running one.
func (m *LibraryManager) StopAutoProcessing() {
	m.mu.Lock()
	s := m.scheduler
	m.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

func (m *LibraryManager) tick(ctx context.Context) {
	res, err := m.ProcessNext(ctx)
	if errors.Is(err, ErrQueueEmpty) {
		return
	}
	if err != nil {
		m.logger.Error("tick", "error", err)
		return
	}
	if m.onTick != nil {
		m.onTick(res)
	}
}
