package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestQueueFIFO(t *testing.T) {
	q := NewRequestQueue()
	_, ok := q.Dequeue()
	assert.False(t, ok)

	for _, id := range []string{"A", "B", "C"} {
		q.Enqueue(BorrowRequest{RequestID: id, BookID: "B001"})
	}
	assert.Equal(t, 3, q.Len())

	peeked := q.PeekAll()
	require.Len(t, peeked, 3)
	peeked[0].RequestID = "mutated"

	for _, want := range []string{"A", "B", "C"} {
		r, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, r.RequestID)
	}
	assert.Zero(t, q.Len())
}

func TestHistoryLedgerLIFO(t *testing.T) {
	h := NewHistoryLedger()
	_, ok := h.Pop()
	assert.False(t, ok)

	h.Push(ReturnEntry{BookID: "X"})
	h.Push(ReturnEntry{BookID: "Y"})
	h.Push(ReturnEntry{BookID: "Z"})

	recent := h.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "return Z", recent[0].Describe())
	assert.Equal(t, "return Y", recent[1].Describe())
	assert.Len(t, h.Recent(0), 3)

	e, ok := h.Pop()
	require.True(t, ok)
	assert.Equal(t, ReturnEntry{BookID: "Z"}, e)
	assert.Equal(t, 2, h.Len())

	h.Clear()
	_, ok = h.Peek()
	assert.False(t, ok)
}
