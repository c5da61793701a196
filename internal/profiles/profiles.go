// Package profiles tracks the active browsing profile and maps it to
// an engine storage partition. Regular profiles share the persistent
// partition namespace; guest profiles get a throwaway partition that
// the engine discards on exit.
package profiles

import (
	"fmt"
	"time"

	"github.com/lumen-browser/lumen/internal/types"
)

const DefaultProfileID = "default"

type Manager struct {
	active types.Profile
	now    func() time.Time
}

func New() *Manager {
	return &Manager{
		active: types.Profile{ID: DefaultProfileID},
		now:    time.Now,
	}
}

func (m *Manager) Active() types.Profile {
	return m.active
}

// Switch makes the named regular profile active. Empty ids fall back
// to the default profile.
func (m *Manager) Switch(id string) types.Profile {
	if id == "" {
		id = DefaultProfileID
	}
	m.active = types.Profile{ID: id}
	return m.active
}

// EnterGuest activates a fresh guest profile. Each call mints a new
// one so guest windows never share state with an earlier guest.
func (m *Manager) EnterGuest() types.Profile {
	m.active = types.Profile{
		ID:    fmt.Sprintf("guest-%d", m.now().UnixMilli()),
		Guest: true,
	}
	return m.active
}

// Partition returns the engine partition name for a profile. Guest
// partitions are unprefixed so the engine treats them as in-memory.
func Partition(p types.Profile) string {
	if p.Guest {
		return p.ID
	}
	return "persist:lumen-" + p.ID
}
