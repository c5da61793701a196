// Package groups maintains the tab group index: group metadata plus the
// domain-derived assignment used by auto-grouping.
package groups

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lumen-browser/lumen/internal/nav"
	"github.com/lumen-browser/lumen/internal/types"
)

// Index owns the set of tab groups. The default group always exists and is
// never deleted; groups may become empty but persist.
type Index struct {
	groups []*types.TabGroup
	byID   map[string]*types.TabGroup

	now    func() time.Time
	lastID int64 // last allocated group timestamp, bumped to stay unique
	color  func() string
}

// New returns an index seeded with the default group.
func New() *Index {
	idx := &Index{
		byID: make(map[string]*types.TabGroup),
		now:  time.Now,
		color: func() string {
			return types.GroupPalette[rand.Intn(len(types.GroupPalette))]
		},
	}
	idx.add(&types.TabGroup{
		ID:    types.DefaultGroupID,
		Name:  "Default",
		Color: types.GroupPalette[0],
	})
	return idx
}

func (idx *Index) add(g *types.TabGroup) {
	idx.groups = append(idx.groups, g)
	idx.byID[g.ID] = g
}

// Groups returns all groups in creation order.
func (idx *Index) Groups() []*types.TabGroup {
	return idx.groups
}

// Get returns the group with the given id, or nil if unknown.
func (idx *Index) Get(id string) *types.TabGroup {
	return idx.byID[id]
}

// Contains reports whether a group with the given id exists.
func (idx *Index) Contains(id string) bool {
	_, ok := idx.byID[id]
	return ok
}

// ResolveGroupFor maps a destination URL to a group id, creating a new
// group named after the URL's domain when none exists yet. Malformed or
// hostless URLs fall back to the default group.
func (idx *Index) ResolveGroupFor(rawURL string) string {
	domain := nav.Domain(rawURL)
	if domain == "" {
		return types.DefaultGroupID
	}

	for _, g := range idx.groups {
		if g.Name == domain {
			return g.ID
		}
	}

	g := &types.TabGroup{
		ID:    fmt.Sprintf("group_%d", idx.nextID()),
		Name:  domain,
		Color: idx.color(),
	}
	idx.add(g)
	return g.ID
}

// nextID returns the current unix-millis timestamp, bumped past the last
// allocation so two groups created in the same millisecond stay distinct.
func (idx *Index) nextID() int64 {
	ts := idx.now().UnixMilli()
	if ts <= idx.lastID {
		ts = idx.lastID + 1
	}
	idx.lastID = ts
	return ts
}

// Ensure registers a group loaded from a snapshot or over the wire so that
// tabs referencing it keep a valid group. Existing groups are left alone.
func (idx *Index) Ensure(g types.TabGroup) {
	if g.ID == "" || idx.Contains(g.ID) {
		return
	}
	cp := g
	idx.add(&cp)
}

// Rename sets a group's display name. Unknown ids are a no-op.
func (idx *Index) Rename(id, name string) {
	if g := idx.byID[id]; g != nil {
		g.Name = name
	}
}

// SetCollapsed toggles a group's collapsed flag. Unknown ids are a no-op.
func (idx *Index) SetCollapsed(id string, collapsed bool) {
	if g := idx.byID[id]; g != nil {
		g.Collapsed = collapsed
	}
}
