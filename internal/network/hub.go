// Package network - hub.go
// WebSocket hub: fan-out of state and event frames to connected clients.
package network

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/engine"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/logger"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/metrics"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/optimization"
)

// Message frame types pushed to clients.
const (
	MsgTypeState  = "state"  // full StateView snapshot
	MsgTypeEvent  = "event"  // single ledger event
	MsgTypeResult = "result" // reply to a client action
	MsgTypeError  = "error"
)

// Message is the wire frame for server-to-client pushes.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Hub maintains the set of active clients and broadcasts frames to them.
// All client set mutation goes through the register/unregister channels so
// Run is the only goroutine touching the map.
type Hub struct {
	engine   *engine.Engine
	eventLog *events.EventLog
	logger   *logger.Logger
	cfg      *optimization.Config

	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	stopChan chan struct{}
}

// NewHub creates a hub bound to a running engine.
func NewHub(e *engine.Engine, log *logger.Logger) *Hub {
	cfg := e.Config()
	return &Hub{
		engine:     e,
		eventLog:   e.GetEventLog(),
		logger:     log,
		cfg:        cfg,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, cfg.BroadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopChan:   make(chan struct{}),
	}
}

// Run processes registration and broadcast until the context ends.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-h.stopChan:
			h.closeAll()
			return

		case client := <-h.register:
			if h.cfg.MaxClientsPerGame > 0 && len(h.clients) >= h.cfg.MaxClientsPerGame {
				h.logger.Warn("Client limit reached, rejecting connection")
				client.conn.Close()
				continue
			}
			h.clients[client] = true
			metrics.Get().RecordWSConnection(1)
			h.logger.Event("WS_CONNECT", client.id, "clients="+strconv.Itoa(len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				metrics.Get().RecordWSConnection(-1)
				h.logger.Event("WS_DISCONNECT", client.id, "clients="+strconv.Itoa(len(h.clients)))
			}

		case frame := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- frame:
				default:
					// Slow consumer. Drop it rather than stall the hub.
					delete(h.clients, client)
					client.closeSend()
					metrics.Get().RecordWSConnection(-1)
				}
			}
		}
	}
}

// Stop shuts the hub down outside of context cancellation.
func (h *Hub) Stop() {
	select {
	case <-h.stopChan:
	default:
		close(h.stopChan)
	}
}

func (h *Hub) closeAll() {
	for client := range h.clients {
		delete(h.clients, client)
		client.closeSend()
	}
}

// Broadcast queues a frame for every connected client.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Broadcast marshal failed: " + err.Error())
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Broadcast channel full, dropping frame")
	}
}

// StartStatePusher periodically pushes the full state snapshot. The idle
// loop mutates state every tick, so clients resync from snapshots instead
// of applying per-tick deltas.
func (h *Hub) StartStatePusher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stopChan:
				return
			case <-ticker.C:
				h.Broadcast(Message{Type: MsgTypeState, Payload: h.engine.StateView()})
			}
		}
	}()
}

// StartEventPoller forwards new ledger events to clients. Heartbeat ticks
// stay out of the stream; the state pusher already covers passive progress.
func (h *Hub) StartEventPoller(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		lastCount := h.eventLog.Len()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stopChan:
				return
			case <-ticker.C:
				all := h.eventLog.Replay()
				if len(all) <= lastCount {
					continue
				}
				for _, e := range all[lastCount:] {
					if e.Type == events.EventTypeTimeTick {
						continue
					}
					h.Broadcast(Message{Type: MsgTypeEvent, Payload: e})
				}
				lastCount = len(all)
			}
		}
	}()
}
