package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"nhooyr.io/websocket"

	"github.com/lumen-browser/lumen/internal/applog"
)

// DefaultBridgePort is the localhost port the engine host connects to.
const DefaultBridgePort = 19192

// bridgeCmd is a command frame sent to the engine host.
type bridgeCmd struct {
	ID        string `json:"id"`
	Action    string `json:"action"` // load, stop, partition
	URL       string `json:"url,omitempty"`
	Partition string `json:"partition,omitempty"`
}

// bridgeEvent is an event frame received from the engine host.
type bridgeEvent struct {
	Type    string `json:"type"`
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	Favicon string `json:"favicon,omitempty"`
}

// Bridge serves a localhost WebSocket the engine host process connects
// to. A single connection is held; a new connection replaces the old.
type Bridge struct {
	port   int
	events chan Event

	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context

	cmdCounter atomic.Int64
}

// NewBridge creates a bridge listening on the given port once
// ListenAndServe is called.
func NewBridge(port int) *Bridge {
	return &Bridge{
		port:   port,
		events: make(chan Event, 64),
	}
}

// Port returns the configured port.
func (b *Bridge) Port() int {
	return b.port
}

// Events returns the channel of page events from the engine host.
func (b *Bridge) Events() <-chan Event {
	return b.events
}

// Available reports whether an engine host is connected.
func (b *Bridge) Available() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// RequestLoad sends a load command to the engine host.
func (b *Bridge) RequestLoad(url string) error {
	return b.send(bridgeCmd{Action: "load", URL: url})
}

// StopLoading forwards a stop request to the engine host.
func (b *Bridge) StopLoading() error {
	return b.send(bridgeCmd{Action: "stop"})
}

// SwitchPartition asks the engine host to rebuild its rendering surface
// on a different storage partition.
func (b *Bridge) SwitchPartition(partition string) error {
	return b.send(bridgeCmd{Action: "partition", Partition: partition})
}

// send writes a command frame to the connected host. With no host
// attached it is a silent no-op: the shell falls back to the simulated
// host via Available.
func (b *Bridge) send(cmd bridgeCmd) error {
	b.mu.Lock()
	conn := b.conn
	ctx := b.connCtx
	b.mu.Unlock()

	if conn == nil {
		return nil
	}

	cmd.ID = fmt.Sprintf("cmd-%d", b.cmdCounter.Add(1))
	applog.Info("bridge.send", "action", cmd.Action, "id", cmd.ID)
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// Handler returns an http.Handler that accepts WebSocket upgrades from
// the engine host.
func (b *Bridge) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			applog.Error("bridge.accept", err)
			return
		}

		ctx := r.Context()
		b.mu.Lock()
		if b.conn != nil {
			applog.Info("bridge.replaced")
			b.conn.CloseNow()
		}
		b.conn = conn
		b.connCtx = ctx
		b.mu.Unlock()

		applog.Info("bridge.connected", "remote", r.RemoteAddr)

		defer func() {
			b.mu.Lock()
			if b.conn == conn {
				b.conn = nil
				b.connCtx = nil
			}
			b.mu.Unlock()
			conn.CloseNow()
			applog.Info("bridge.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var ev bridgeEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				applog.Error("bridge.parse", err)
				continue
			}
			applog.Info("bridge.recv", "type", ev.Type)
			select {
			case b.events <- Event{
				Kind:    EventKind(ev.Type),
				URL:     ev.URL,
				Title:   ev.Title,
				Favicon: ev.Favicon,
			}:
			default:
			}
		}
	})
}

// ListenAndServe starts the bridge server on the configured port.
func (b *Bridge) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", b.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", b.port)
	applog.Info("bridge.start", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	return srv.ListenAndServe()
}
