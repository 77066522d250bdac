package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type circulation struct {
	catalog   *Catalog
	queue     *RequestQueue
	ledger    *HistoryLedger
	processor *CirculationProcessor
	undo      *UndoEngine
}

func newCirculation(t *testing.T, books ...Book) *circulation {
	t.Helper()
	catalog, ledger := newCatalog(t, books...)
	queue := NewRequestQueue()
	logger := quietLogger()
	return &circulation{
		catalog:   catalog,
		queue:     queue,
		ledger:    ledger,
		processor: NewCirculationProcessor(catalog, queue, ledger, logger),
		undo:      NewUndoEngine(catalog, ledger),
	}
}

func (c *circulation) copies(t *testing.T, id string) int {
	t.Helper()
	b, ok := c.catalog.Get(id)
	require.True(t, ok, "book %s missing", id)
	return b.Copies
}

func TestProcessorStepEmptyQueue(t *testing.T) {
	c := newCirculation(t)
	_, err := c.processor.Step()
	assert.ErrorIs(t, err, ErrQueueEmpty)
	assert.Zero(t, c.ledger.Len())
}

func TestProcessorProcessesInSubmissionOrder(t *testing.T) {
	c := newCirculation(t, Book{ID: "B001", Copies: 2})
	for _, id := range []string{"A", "B", "C"} {
		c.queue.Enqueue(BorrowRequest{RequestID: id, BookID: "B001", Requester: id})
	}

	want := []struct {
		id      string
		outcome Outcome
	}{
		{"A", OutcomeBorrowed},
		{"B", OutcomeBorrowed},
		{"C", OutcomeNoStock},
	}
	for _, w := range want {
		res, err := c.processor.Step()
		require.NoError(t, err)
		assert.Equal(t, w.id, res.Request.RequestID)
		assert.Equal(t, w.outcome, res.Outcome)
	}
	assert.Zero(t, c.copies(t, "B001"))
	assert.Zero(t, c.queue.Len(), "failed requests are not re-queued")
}

func TestProcessorBookDeletedAfterEnqueue(t *testing.T) {
	c := newCirculation(t, Book{ID: "B001", Copies: 1})
	c.queue.Enqueue(BorrowRequest{RequestID: "R1", BookID: "B001"})
	_, err := c.catalog.Delete("B001")
	require.NoError(t, err)

	res, err := c.processor.Step()
	require.NoError(t, err)
	assert.Equal(t, OutcomeMissing, res.Outcome)

	top, ok := c.ledger.Peek()
	require.True(t, ok)
	assert.Equal(t, KindBorrowFailed, top.Kind())
}

func TestScenarioBorrowTickThenUndo(t *testing.T) {
	c := newCirculation(t, Book{ID: "B001", Copies: 1})
	c.queue.Enqueue(BorrowRequest{RequestID: "R1", BookID: "B001", Requester: "Ana"})

	_, err := c.processor.Step()
	require.NoError(t, err)
	assert.Zero(t, c.copies(t, "B001"))
	top, _ := c.ledger.Peek()
	assert.Equal(t, KindBorrow, top.Kind())

	_, err = c.processor.Step()
	assert.ErrorIs(t, err, ErrQueueEmpty)
	assert.Zero(t, c.copies(t, "B001"))

	_, err = c.undo.UndoLast()
	require.NoError(t, err)
	assert.Equal(t, 1, c.copies(t, "B001"))
	assert.Zero(t, c.ledger.Len())
}

func TestScenarioBorrowFailedThenUndo(t *testing.T) {
	c := newCirculation(t, Book{ID: "B002", Copies: 0})
	c.queue.Enqueue(BorrowRequest{RequestID: "R1", BookID: "B002", Requester: "Ana"})

	res, err := c.processor.Step()
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoStock, res.Outcome)
	assert.Zero(t, c.copies(t, "B002"))
	top, _ := c.ledger.Peek()
	assert.Equal(t, KindBorrowFailed, top.Kind())

	before := c.catalog.Snapshot()
	e, err := c.undo.UndoLast()
	require.NoError(t, err)
	assert.Equal(t, KindBorrowFailed, e.Kind())
	assert.Equal(t, before, c.catalog.Snapshot())
	assert.Zero(t, c.ledger.Len())
}
