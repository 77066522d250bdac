package library

// HistoryLedger is the undo stack. Entries are immutable values, so later
// edits to a book never change an entry that is still waiting to be undone.
type HistoryLedger struct {
	entries []HistoryEntry
}

// NewHistoryLedger returns an empty ledger.
func NewHistoryLedger() *HistoryLedger { return &HistoryLedger{} }

// Push records e as the newest entry.
func (h *HistoryLedger) Push(e HistoryEntry) {
	h.entries = append(h.entries, e)
}

// Pop removes and returns the newest entry.
func (h *HistoryLedger) Pop() (HistoryEntry, bool) {
	n := len(h.entries)
	if n == 0 {
		return nil, false
	}
	e := h.entries[n-1]
	h.entries[n-1] = nil
	h.entries = h.entries[:n-1]
	return e, true
}

// Peek returns the newest entry without removing it.
func (h *HistoryLedger) Peek() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return nil, false
	}
	return h.entries[len(h.entries)-1], true
}

// Len returns the number of recorded entries.
func (h *HistoryLedger) Len() int { return len(h.entries) }

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func (h *HistoryLedger) Recent(n int) []HistoryEntry {
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]HistoryEntry, 0, n)
	for i := len(h.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.entries[i])
	}
	return out
}

// Clear drops every entry.
func (h *HistoryLedger) Clear() { h.entries = nil }
