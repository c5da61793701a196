package types

import "time"

// Tab is a single navigable browsing context. IDs are allocated
// monotonically and never reused while the process lives.
type Tab struct {
	ID        int
	Title     string
	URL       string // empty = blank new-tab state
	Active    bool
	Favicon   string
	GroupID   string
	Suspended bool // memory-saving placeholder; no trigger wired yet
}

// TabGroup is a named, colored bucket of tabs. The "default" group always
// exists; auto-created groups get ids of the form "group_<unix-millis>".
type TabGroup struct {
	ID        string
	Name      string
	Color     string
	Collapsed bool
}

// DefaultGroupID is the group every tab falls back to.
const DefaultGroupID = "default"

// GroupPalette is the fixed set of colors new groups draw from.
var GroupPalette = []string{
	"#1a73e8", "#d93025", "#1e8e3e", "#f9ab00", "#9334e6", "#ea4335",
}

// HistoryEntry records one visited destination. URL is the identity;
// revisits bump VisitCount and LastVisit.
type HistoryEntry struct {
	URL        string
	Title      string
	VisitCount int
	LastVisit  time.Time
}

// SessionTab is the portion of a tab captured into a session snapshot.
// Live tab ids and the active flag are deliberately not captured.
type SessionTab struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	GroupID string `json:"groupId"`
}

// SessionSnapshot is a saved, named list of tab destinations.
type SessionSnapshot struct {
	ID        int64
	Name      string
	Tabs      []SessionTab
	CreatedAt time.Time
}

// Profile identifies a browsing profile backed by its own storage partition.
type Profile struct {
	ID    string
	Guest bool
}

// PrivacyStats holds the simulated blocking counters shown in the badge.
type PrivacyStats struct {
	TrackersBlocked       int
	AdsBlocked            int
	FingerprintingBlocked int
	RecentHits            int // decays on a timer; drives badge emphasis
}

// Settings is the process-wide configuration record. It is loaded once at
// startup and persisted whole on explicit save.
type Settings struct {
	HomePage     string `json:"homePage"`
	SearchEngine string `json:"searchEngine"`
	Theme        string `json:"theme"`

	BlockThirdPartyCookies bool `json:"blockThirdPartyCookies"`
	BlockTrackers          bool `json:"blockTrackers"`
	BlockFingerprinting    bool `json:"blockFingerprinting"`
	HTTPSOnly              bool `json:"httpsOnly"`
	DoNotTrack             bool `json:"doNotTrack"`

	ShowFavicons bool `json:"showFavicons"`
	TabGrouping  bool `json:"tabGrouping"`

	TabSuspendTime    int  `json:"tabSuspendTime"` // minutes
	ReopenLastSession bool `json:"reopenLastSession"`
	AutoSaveEnabled   bool `json:"autoSaveEnabled"`
}

// DefaultSettings returns the documented default configuration. Loading a
// stored record unmarshals over this value so missing fields keep their
// defaults.
func DefaultSettings() Settings {
	return Settings{
		HomePage:               "",
		SearchEngine:           "https://www.google.com/search?q=",
		Theme:                  "auto",
		BlockThirdPartyCookies: true,
		BlockTrackers:          true,
		BlockFingerprinting:    true,
		HTTPSOnly:              true,
		DoNotTrack:             true,
		ShowFavicons:           true,
		TabGrouping:            true,
		TabSuspendTime:         10,
		ReopenLastSession:      true,
		AutoSaveEnabled:        true,
	}
}
