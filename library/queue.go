package library

// RequestQueue holds pending borrow requests in submission order.
// Several requests for the same book are legal and processed independently.
type RequestQueue struct {
	items []BorrowRequest
}

// NewRequestQueue returns an empty queue.
func NewRequestQueue() *RequestQueue { return &RequestQueue{} }

// Enqueue appends r behind every request already waiting.
func (q *RequestQueue) Enqueue(r BorrowRequest) {
	q.items = append(q.items, r)
}

// Dequeue removes and returns the oldest request.
func (q *RequestQueue) Dequeue() (BorrowRequest, bool) {
	if len(q.items) == 0 {
		return BorrowRequest{}, false
	}
	r := q.items[0]
	q.items[0] = BorrowRequest{}
	q.items = q.items[1:]
	return r, true
}

// Len returns the number of pending requests.
func (q *RequestQueue) Len() int { return len(q.items) }

// PeekAll returns the pending requests, oldest first, without consuming them.
func (q *RequestQueue) PeekAll() []BorrowRequest {
	return append([]BorrowRequest(nil), q.items...)
}
