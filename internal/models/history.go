package models

import "encoding/json"

// HistoryCapacity bounds the number of utterances kept per session.
const HistoryCapacity = 60

// History is a fixed-capacity ring of utterances. Appending to a full ring
// evicts the oldest entry. The zero value is an empty history.
type History struct {
	entries [HistoryCapacity]HistoryEntry
	start   int
	size    int
}

func NewHistory(entries ...HistoryEntry) History {
	var h History
	h.Append(entries...)
	return h
}

func (h *History) Append(entries ...HistoryEntry) {
	for _, e := range entries {
		if h.size < HistoryCapacity {
			h.entries[(h.start+h.size)%HistoryCapacity] = e
			h.size++
			continue
		}
		h.entries[h.start] = e
		h.start = (h.start + 1) % HistoryCapacity
	}
}

func (h *History) Len() int {
	return h.size
}

func (h *History) Reset() {
	*h = History{}
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.entries[(h.start+i)%HistoryCapacity]
	}
	return out
}

// Last returns up to n of the most recent entries, oldest first.
func (h *History) Last(n int) []HistoryEntry {
	if n <= 0 {
		return []HistoryEntry{}
	}
	if n > h.size {
		n = h.size
	}
	out := make([]HistoryEntry, n)
	offset := h.size - n
	for i := 0; i < n; i++ {
		out[i] = h.entries[(h.start+offset+i)%HistoryCapacity]
	}
	return out
}

// LastSpeaker returns the role of the most recent non-user entry.
func (h *History) LastSpeaker() (Role, bool) {
	for i := h.size - 1; i >= 0; i-- {
		e := h.entries[(h.start+i)%HistoryCapacity]
		if e.Role != RoleUser && e.Role != "" {
			return e.Role, true
		}
	}
	return "", false
}

func (h History) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Entries())
}

// UnmarshalJSON keeps only the newest HistoryCapacity entries.
func (h *History) UnmarshalJSON(data []byte) error {
	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	h.Reset()
	if len(entries) > HistoryCapacity {
		entries = entries[len(entries)-HistoryCapacity:]
	}
	h.Append(entries...)
	return nil
}
