// Package registry owns the set of open tabs, the active-tab pointer and
// the recently-closed undo buffer.
package registry

import (
	"github.com/lumen-browser/lumen/internal/groups"
	"github.com/lumen-browser/lumen/internal/types"
)

// NewTabTitle is the display title of a blank tab.
const NewTabTitle = "New Tab"

// Patch describes a partial mutation of a tab. Nil fields are untouched.
type Patch struct {
	URL     *string
	Title   *string
	Favicon *string
	GroupID *string
}

// Registry holds all open tabs. Invariants: the registry is never empty,
// and exactly one tab is active. Tab ids increase monotonically and are
// never reused while the process lives.
type Registry struct {
	tabs   []*types.Tab
	nextID int
	closed ClosedStack

	groups    *groups.Index
	autoGroup func() bool
}

// New returns a registry seeded with a single blank active tab. autoGroup
// reports whether domain auto-grouping is currently enabled; it is
// consulted on every tab creation.
func New(idx *groups.Index, autoGroup func() bool) *Registry {
	r := &Registry{
		nextID:    1,
		groups:    idx,
		autoGroup: autoGroup,
	}
	r.tabs = []*types.Tab{r.blankTab()}
	r.tabs[0].Active = true
	return r
}

func (r *Registry) blankTab() *types.Tab {
	t := &types.Tab{
		ID:      r.nextID,
		Title:   NewTabTitle,
		GroupID: types.DefaultGroupID,
	}
	r.nextID++
	return t
}

// Tabs returns all tabs in strip order.
func (r *Registry) Tabs() []*types.Tab {
	return r.tabs
}

// Len returns the number of open tabs. Never zero.
func (r *Registry) Len() int {
	return len(r.tabs)
}

// Get returns the tab with the given id, or nil.
func (r *Registry) Get(id int) *types.Tab {
	for _, t := range r.tabs {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Active returns the currently active tab. The invariant guarantees one
// exists.
func (r *Registry) Active() *types.Tab {
	for _, t := range r.tabs {
		if t.Active {
			return t
		}
	}
	// Unreachable while the invariant holds; repair rather than return nil.
	r.tabs[0].Active = true
	return r.tabs[0]
}

// Closed exposes the recently-closed stack.
func (r *Registry) Closed() *ClosedStack {
	return &r.closed
}

// CreateTab allocates the next id, deactivates all tabs and inserts the
// new tab as active. When url is given and auto-grouping is enabled the
// tab is assigned to its domain group.
func (r *Registry) CreateTab(url, title string) int {
	if title == "" {
		title = NewTabTitle
	}
	tab := r.blankTab()
	tab.URL = url
	tab.Title = title

	if url != "" && r.autoGroup() {
		tab.GroupID = r.groups.ResolveGroupFor(url)
	}

	for _, t := range r.tabs {
		t.Active = false
	}
	tab.Active = true
	r.tabs = append(r.tabs, tab)
	return tab.ID
}

// CloseTab removes a tab, first pushing a copy onto the recently-closed
// stack. Closing the sole remaining tab replaces it in place with a fresh
// blank tab (new id) so the registry never empties. Closing the active tab
// activates the tab that slides into the same slot, falling back to the
// new last tab. Unknown ids are a no-op.
func (r *Registry) CloseTab(id int) bool {
	idx := -1
	for i, t := range r.tabs {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	r.closed.Push(*r.tabs[idx])

	if len(r.tabs) == 1 {
		fresh := r.blankTab()
		fresh.Active = true
		r.tabs[0] = fresh
		return true
	}

	wasActive := r.tabs[idx].Active
	r.tabs = append(r.tabs[:idx], r.tabs[idx+1:]...)

	if wasActive {
		next := idx
		if next > len(r.tabs)-1 {
			next = len(r.tabs) - 1
		}
		for _, t := range r.tabs {
			t.Active = false
		}
		r.tabs[next].Active = true
	}
	return true
}

// SwitchTo activates the tab with the given id. Unknown ids are a no-op:
// UI click targets may race with concurrent closes.
func (r *Registry) SwitchTo(id int) bool {
	if r.Get(id) == nil {
		return false
	}
	for _, t := range r.tabs {
		t.Active = t.ID == id
	}
	return true
}

// ReopenClosed pops the recently-closed stack and re-creates a tab with
// its url and title. Returns false when the stack is empty.
func (r *Registry) ReopenClosed() (int, bool) {
	tab, ok := r.closed.Pop()
	if !ok {
		return 0, false
	}
	return r.CreateTab(tab.URL, tab.Title), true
}

// UpdateActive applies a patch to whichever tab is active at call time.
// Engine callbacks land here, so a tab switch between dispatch and
// callback means the patch hits the then-current active tab; last writer
// wins.
func (r *Registry) UpdateActive(p Patch) {
	t := r.Active()
	if p.URL != nil {
		t.URL = *p.URL
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Favicon != nil {
		t.Favicon = *p.Favicon
	}
	if p.GroupID != nil {
		t.GroupID = *p.GroupID
	}
}

// Reset replaces all live tabs with the session tabs, activating the
// first. The displaced non-blank tabs are pushed onto the recently-closed
// stack, oldest first, so the replaced window stays recoverable. Fresh
// ids are allocated; group references to unknown groups are re-resolved
// (or defaulted when auto-grouping is off). An empty input seeds a
// single blank tab.
func (r *Registry) Reset(tabs []types.SessionTab) {
	for _, t := range r.tabs {
		if t.URL != "" {
			r.closed.Push(*t)
		}
	}
	r.tabs = nil
	for _, st := range tabs {
		tab := r.blankTab()
		tab.URL = st.URL
		tab.Title = st.Title
		if tab.Title == "" {
			tab.Title = NewTabTitle
		}
		switch {
		case st.GroupID != "" && r.groups.Contains(st.GroupID):
			tab.GroupID = st.GroupID
		case st.URL != "" && r.autoGroup():
			tab.GroupID = r.groups.ResolveGroupFor(st.URL)
		}
		r.tabs = append(r.tabs, tab)
	}
	if len(r.tabs) == 0 {
		r.tabs = []*types.Tab{r.blankTab()}
	}
	r.tabs[0].Active = true
}

// Rehydrate replaces the live tabs with previously saved ones, keeping
// their ids and activating the tab with activeID (first tab when the id
// is gone). The id counter is advanced past the highest restored id so
// future tabs stay unique. An empty input seeds a single blank tab.
func (r *Registry) Rehydrate(tabs []types.Tab, activeID int) {
	if len(tabs) == 0 {
		r.tabs = []*types.Tab{r.blankTab()}
		r.tabs[0].Active = true
		return
	}

	r.tabs = nil
	found := false
	for _, saved := range tabs {
		t := saved
		t.Active = t.ID == activeID
		if t.Active {
			found = true
		}
		if t.GroupID == "" || !r.groups.Contains(t.GroupID) {
			t.GroupID = types.DefaultGroupID
		}
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
		r.tabs = append(r.tabs, &t)
	}
	if !found {
		for _, t := range r.tabs {
			t.Active = false
		}
		r.tabs[0].Active = true
	}
}
