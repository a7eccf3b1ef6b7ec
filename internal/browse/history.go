package browse

const historyCap = 50

// History is the bounded log of visited snippets. Oldest entries drop past
// the cap; recording the same key twice in a row is a no-op.
type History struct {
	entries []FavoriteKey
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Record(key FavoriteKey) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == key {
		return
	}
	h.entries = append(h.entries, key)
	if len(h.entries) > historyCap {
		h.entries = h.entries[len(h.entries)-historyCap:]
	}
}

func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy, newest last.
func (h *History) Entries() []FavoriteKey {
	return append([]FavoriteKey(nil), h.entries...)
}
