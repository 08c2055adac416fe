// Package tui provides a Bubble Tea terminal UI for the idlecore engine.
package tui

// History is a bounded command history with cursor-based navigation.
type History struct {
	entries []string
	max     int
	// offset counts back from the newest entry; 0 = not navigating.
	offset int
}

// NewHistory creates a history buffer with the given maximum size.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Push adds a command to history. Consecutive duplicates are skipped.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
}

// Prev returns the previous (older) history entry.
// Returns ("", false) if history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.offset < len(h.entries) {
		h.offset++
	}
	return h.entries[len(h.entries)-h.offset], true
}

// Next returns the next (newer) history entry.
// Returns ("", false) when past the most recent entry (back to fresh input).
func (h *History) Next() (string, bool) {
	if h.offset <= 1 {
		h.offset = 0
		return "", false
	}
	h.offset--
	return h.entries[len(h.entries)-h.offset], true
}

// ResetCursor resets the navigation cursor to the "not navigating" state.
func (h *History) ResetCursor() {
	h.offset = 0
}
