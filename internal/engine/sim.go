package engine

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/lumen-browser/lumen/internal/applog"
)

var skipPrefixes = []string{"about:", "file:", "chrome:", "data:"}

// Sim is the in-process fallback host used when no engine is attached.
// A load fetches the page itself and derives the title via readability
// extraction; on any failure it still reports a completed navigation with
// the host name as title, so the shell action never fails.
type Sim struct {
	events chan Event
	client *http.Client
}

// NewSim returns a simulated host.
func NewSim() *Sim {
	return &Sim{
		events: make(chan Event, 16),
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Events returns the channel of simulated page events.
func (s *Sim) Events() <-chan Event {
	return s.events
}

// Available always reports true; the simulation is the degrade path of
// last resort.
func (s *Sim) Available() bool {
	return true
}

// RequestLoad simulates a page load. The fetch and extraction run in the
// background; the caller never blocks.
func (s *Sim) RequestLoad(rawURL string) error {
	s.emit(Event{Kind: EventLoadingStart, URL: rawURL})
	go func() {
		title := s.fetchTitle(rawURL)
		s.emit(Event{Kind: EventNavigated, URL: rawURL})
		if title != "" {
			s.emit(Event{Kind: EventTitle, URL: rawURL, Title: title})
		}
		s.emit(Event{Kind: EventLoadingStop, URL: rawURL})
	}()
	return nil
}

// StopLoading is a no-op: simulated loads are short-lived.
func (s *Sim) StopLoading() error {
	return nil
}

// SwitchPartition is a no-op: the simulation holds no per-partition
// state.
func (s *Sim) SwitchPartition(partition string) error {
	applog.Info("sim.partition", "partition", partition)
	return nil
}

// fetchTitle fetches the destination and extracts a readable page title.
// Every failure degrades to the host name.
func (s *Sim) fetchTitle(rawURL string) string {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(rawURL, prefix) {
			return ""
		}
	}

	fallback := ""
	if u, err := url.Parse(rawURL); err == nil {
		fallback = u.Hostname()
	}

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return fallback
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Lumen)")
	resp, err := s.client.Do(req)
	if err != nil {
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fallback
	}

	article, err := readability.FromReader(resp.Body, nil)
	if err != nil || article.Title == "" {
		return fallback
	}
	return article.Title
}

// emit delivers an event without ever blocking the load path.
func (s *Sim) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		applog.Info("sim.drop", "kind", fmt.Sprint(ev.Kind))
	}
}
