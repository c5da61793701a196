package registry

import "github.com/lumen-browser/lumen/internal/types"

// ClosedCapacity bounds the recently-closed undo buffer.
const ClosedCapacity = 10

// ClosedStack is a bounded LIFO of tabs at the moment of closure. Pushing
// at capacity evicts the oldest entry.
type ClosedStack struct {
	entries []types.Tab // newest first
}

// Push records a closed tab, evicting the oldest entry at capacity.
func (s *ClosedStack) Push(tab types.Tab) {
	s.entries = append([]types.Tab{tab}, s.entries...)
	if len(s.entries) > ClosedCapacity {
		s.entries = s.entries[:ClosedCapacity]
	}
}

// Pop removes and returns the most recently closed tab.
func (s *ClosedStack) Pop() (types.Tab, bool) {
	if len(s.entries) == 0 {
		return types.Tab{}, false
	}
	tab := s.entries[0]
	s.entries = s.entries[1:]
	return tab, true
}

// Len returns the number of recoverable entries.
func (s *ClosedStack) Len() int {
	return len(s.entries)
}

// Entries returns the stack contents, most recently closed first.
func (s *ClosedStack) Entries() []types.Tab {
	return s.entries
}

// Replace swaps the stack contents wholesale, used when rehydrating from
// storage. Input is truncated to capacity.
func (s *ClosedStack) Replace(entries []types.Tab) {
	if len(entries) > ClosedCapacity {
		entries = entries[:ClosedCapacity]
	}
	s.entries = entries
}
