package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/usngrid/internal/adapters/geojson"
	natsadapter "github.com/samirrijal/usngrid/internal/adapters/nats"
	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/pkg/metrics"
)

const wsRenderTimeout = 15 * time.Second

// wsMessage is sent from client to render a viewport or to follow render events.
type wsMessage struct {
	Action    string             `json:"action"` // "render" | "subscribe" | "unsubscribe"
	ID        string             `json:"id"`     // echoed back on render replies
	Bounds    domain.BoundingBox `json:"bounds"`
	Zoom      int                `json:"zoom"`
	Datum     string             `json:"datum"`
	Intervals []string           `json:"intervals"`
	GZD       *bool              `json:"gzd"`
	Format    string             `json:"format"` // "json" (default) | "geojson"
}

// wsGridReply answers a render action.
type wsGridReply struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Result any    `json:"result"`
}

// WebSocketHandler returns a handler that renders viewports on request and
// relays grid render events from NATS. Clients send JSON such as
// {"action":"render","id":"1","bounds":{...},"zoom":9} while panning, or
// {"action":"subscribe"} to follow renders made by other clients and workers.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		log := slog.Default().With("remote_addr", c.RemoteAddr().String())
		log.Info("ws client connected")

		var mu sync.Mutex
		var sub *nats.Subscription

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "render":
				_ = writeJSON(wsRender(deps, m))

			case "subscribe":
				if deps.NATS == nil {
					_ = writeJSON(map[string]string{"error": "events not available"})
					continue
				}
				if sub != nil {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": natsadapter.SubjectGridRendered})
					continue
				}
				s, err := deps.NATS.Subscribe(natsadapter.SubjectGridRendered, func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				sub = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": natsadapter.SubjectGridRendered})

			case "unsubscribe":
				if sub == nil {
					_ = writeJSON(map[string]string{"error": "not subscribed"})
					continue
				}
				_ = sub.Unsubscribe()
				sub = nil
				_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": natsadapter.SubjectGridRendered})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		if sub != nil {
			_ = sub.Unsubscribe()
		}
		log.Info("ws client disconnected")
	}
}

// wsRender runs one render action and builds the reply.
func wsRender(deps *Dependencies, m wsMessage) any {
	req := domain.GridRequest{
		Bounds:     m.Bounds,
		Zoom:       m.Zoom,
		Datum:      domain.Datum(m.Datum),
		IncludeGZD: m.GZD == nil || *m.GZD,
	}
	for _, s := range m.Intervals {
		ivs, err := parseIntervals(s)
		if err != nil {
			return map[string]string{"id": m.ID, "error": err.Error()}
		}
		req.Intervals = append(req.Intervals, ivs...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsRenderTimeout)
	defer cancel()
	res, err := deps.Grid.Render(ctx, req)
	if err != nil {
		return map[string]string{"id": m.ID, "error": err.Error()}
	}
	if m.Format == formatGeoJSON {
		return wsGridReply{Type: "geojson", ID: m.ID, Result: geojson.FromGrid(res)}
	}
	return wsGridReply{Type: "grid", ID: m.ID, Result: res}
}
