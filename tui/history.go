// Package tui provides the Bubble Tea terminal UI: the clickable farm grid,
// the furnace panel, the event log and the command prompt.
package tui

// History is a fixed-size ring of submitted commands with cursor-based
// navigation. Once full, the oldest entry is overwritten.
type History struct {
	ring   []string
	head   int // slot the next Push writes to
	size   int
	cursor int // -1 = not navigating, otherwise 0 (oldest) .. size-1 (newest)
}

// NewHistory creates a history buffer with the given maximum size.
func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{ring: make([]string, max), cursor: -1}
}

// Len returns the number of stored commands.
func (h *History) Len() int { return h.size }

// at returns the i-th oldest entry.
func (h *History) at(i int) string {
	start := (h.head - h.size + len(h.ring)) % len(h.ring)
	return h.ring[(start+i)%len(h.ring)]
}

// Push adds a command to history. Consecutive duplicates are skipped.
func (h *History) Push(cmd string) {
	if cmd == "" || (h.size > 0 && h.at(h.size-1) == cmd) {
		return
	}
	h.ring[h.head] = cmd
	h.head = (h.head + 1) % len(h.ring)
	if h.size < len(h.ring) {
		h.size++
	}
}

// Prev returns the previous (older) history entry.
// Returns ("", false) if history is empty.
func (h *History) Prev() (string, bool) {
	if h.size == 0 {
		return "", false
	}
	if h.cursor == -1 {
		h.cursor = h.size - 1
	} else if h.cursor > 0 {
		h.cursor--
	}
	return h.at(h.cursor), true
}

// Next returns the next (newer) history entry.
// Returns ("", false) when past the most recent entry (back to fresh input).
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= h.size {
		h.cursor = -1
		return "", false
	}
	return h.at(h.cursor), true
}

// ResetCursor resets the navigation cursor to the "not navigating" state.
func (h *History) ResetCursor() {
	h.cursor = -1
}
