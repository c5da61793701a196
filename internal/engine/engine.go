// Package engine defines the boundary to the rendering host: the shell
// sends navigation commands out and receives page events back. Two hosts
// exist: a WebSocket bridge to an external engine process, and an
// in-process simulated host used whenever no engine is attached.
package engine

// EventKind identifies a page event coming back from the engine.
type EventKind string

const (
	EventNavigated    EventKind = "navigated"
	EventTitle        EventKind = "title"
	EventFavicon      EventKind = "favicon"
	EventLoadingStart EventKind = "loading.start"
	EventLoadingStop  EventKind = "loading.stop"
)

// Event is a page event applied to whichever tab is active when the shell
// picks it up.
type Event struct {
	Kind    EventKind
	URL     string
	Title   string
	Favicon string
}

// Host is the rendering surface the shell talks to. Implementations must
// never block the caller: commands are fire-and-forget and events arrive
// on the Events channel.
type Host interface {
	// RequestLoad asks the host to load a destination in the rendering
	// surface.
	RequestLoad(url string) error
	// StopLoading forwards a stop request; not modeled as a state
	// transition in the shell.
	StopLoading() error
	// SwitchPartition points the rendering surface at a different storage
	// partition (profile or guest switch).
	SwitchPartition(partition string) error
	// Events delivers page events from the host.
	Events() <-chan Event
	// Available reports whether the host can currently render.
	Available() bool
}
