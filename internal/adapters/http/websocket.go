package http

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/lalit-0106/gps-attendance-app/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "evaluations" | "denied" (default: evaluations)
	Device  string `json:"device"`  // device key filter (optional, "" = all)
}

// EvaluationStreamHandler returns a handler that upgrades to WebSocket and
// relays live geofence evaluations from NATS to connected clients.
// Clients send JSON: {"action":"subscribe","channel":"denied","device":"kiosk-1"}.
// The "denied" channel forwards only evaluations with allowed=false.
func EvaluationStreamHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		if nc == nil {
			_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"event stream not configured"}`))
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // channel:device -> subscription

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

		subscribe := func(channel, device string) (*nats.Subscription, error) {
			subject := "geoclock.evaluation.>"
			if device != "" {
				// NATS subjects cannot contain whitespace; the publisher
				// collapses it the same way.
				subject = "geoclock.evaluation." + strings.Join(strings.Fields(device), "-")
			}
			if channel == "denied" {
				return nc.Subscribe(subject, func(msg *nats.Msg) {
					var ev struct {
						Allowed bool `json:"allowed"`
					}
					if err := json.Unmarshal(msg.Data, &ev); err != nil || ev.Allowed {
						return
					}
					_ = writeJSON(json.RawMessage(msg.Data))
				})
			}
			return nc.Subscribe(subject, func(msg *nats.Msg) {
				_ = writeJSON(json.RawMessage(msg.Data))
			})
		}

		// Auto-subscribe to all evaluations by default
		sub, err := subscribe("evaluations", "")
		if err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}
		subs["evaluations:"] = sub

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

		// Read client messages for subscribe/unsubscribe
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

			channel := m.Channel
			if channel == "" {
				channel = "evaluations"
			}
			if channel != "evaluations" && channel != "denied" {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + channel})
				continue
			}
			key := channel + ":" + m.Device

			switch m.Action {
			case "subscribe":
				if _, exists := subs[key]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "channel": key})
					continue
				}
				s, err := subscribe(channel, m.Device)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[key] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "channel": key})

			case "unsubscribe":
				if s, exists := subs[key]; exists {
					_ = s.Unsubscribe()
					delete(subs, key)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "channel": key})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + key})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
