package library

import (
	"errors"
	"log/slog"
	"time"
)

// Outcome is the terminal result of processing one borrow request.
type Outcome int

const (
	OutcomeBorrowed Outcome = iota
	OutcomeNoStock
	// OutcomeMissing means the book was deleted after the request was queued.
	OutcomeMissing
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBorrowed:
		return "borrowed"
	case OutcomeNoStock:
		return "no copies available"
	case OutcomeMissing:
		return "book no longer exists"
	default:
		return "unknown"
	}
}

// StepResult reports what a single processing step did.
type StepResult struct {
	Request BorrowRequest
	Outcome Outcome
}

// CirculationProcessor drains the request queue one request at a time.
type CirculationProcessor struct {
	catalog *Catalog
	queue   *RequestQueue
	ledger  *HistoryLedger
	logger  *slog.Logger
	now     func() time.Time
}

func NewCirculationProcessor(catalog *Catalog, queue *RequestQueue, ledger *HistoryLedger, logger *slog.Logger) *CirculationProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &CirculationProcessor{
		catalog: catalog,
		queue:   queue,
		ledger:  ledger,
		logger:  logger,
		now:     time.Now,
	}
}

// Step dequeues exactly one request and applies it. It returns ErrQueueEmpty
// when there is nothing to do. A request is never re-queued, whatever the
// outcome.
func (p *CirculationProcessor) Step() (StepResult, error) {
	req, ok := p.queue.Dequeue()
	if !ok {
		return StepResult{}, ErrQueueEmpty
	}

	res := StepResult{Request: req}
	borrowed, err := p.catalog.AttemptBorrow(req.BookID)
	switch {
	case errors.Is(err, ErrNotFound):
		res.Outcome = OutcomeMissing
		p.logger.Warn("borrow request for missing book dropped",
			"request_id", req.RequestID, "book_id", req.BookID, "requester", req.Requester)
		p.ledger.Push(BorrowFailedEntry{Request: req, At: p.now()})
	case err != nil:
		return res, err
	case borrowed:
		res.Outcome = OutcomeBorrowed
		p.ledger.Push(BorrowEntry{Request: req, At: p.now()})
	default:
		res.Outcome = OutcomeNoStock
		p.ledger.Push(BorrowFailedEntry{Request: req, At: p.now()})
	}
	return res, nil
}
