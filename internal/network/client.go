// Package network - client.go
// One connected WebSocket player: read pump, write pump, action routing.
package network

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The game client is served from anywhere during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Action types a client may send.
const (
	ActionClick       = "CLICK"
	ActionBuyProducer = "BUY_PRODUCER"
	ActionBuyUpgrade  = "BUY_UPGRADE"
	ActionBuyClick    = "BUY_CLICK_POWER"
	ActionPrestige    = "PRESTIGE"
	ActionGetState    = "GET_STATE"
)

// PlayerAction is the client-to-server frame.
type PlayerAction struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// BuyPayload names the entity to purchase. Amount 0 means buy-max for
// producers and is ignored for upgrades.
type BuyPayload struct {
	EntityID string `json:"entity_id"`
	Amount   int    `json:"amount,omitempty"`
}

// Client is a middleman between the WebSocket connection and the hub.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// Sliding one-second window for the action rate limit.
	windowStart time.Time
	windowCount int

	// The hub closes send when it drops the client; the pumps keep replying
	// until their next channel receive notices. closed gates reply so a late
	// send cannot hit a closed channel.
	mu     sync.Mutex
	closed bool
}

// closeSend shuts the outbound channel exactly once. Called by the hub when
// the client unregisters, falls behind, or the hub stops.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ServeWS upgrades an HTTP request to a WebSocket client of the hub.
// GET /ws
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed: " + err.Error())
		metrics.Get().RecordWSError()
		return
	}

	client := &Client{
		id:   events.GenerateEventID(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.cfg.ClientSendBuffer),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()

	// Greet with a full snapshot so the client renders immediately.
	client.reply(Message{Type: MsgTypeState, Payload: h.engine.StateView()})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("WebSocket read error: " + err.Error())
				metrics.Get().RecordWSError()
			}
			return
		}
		metrics.Get().RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(raw, &action); err != nil {
			c.reply(Message{Type: MsgTypeError, Error: "malformed action"})
			continue
		}
		c.routeAction(action)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
			metrics.Get().RecordWSMessage(false)

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// routeAction dispatches one client action into the engine.
func (c *Client) routeAction(action PlayerAction) {
	if !c.allowAction() {
		c.reply(Message{Type: MsgTypeError, Error: "rate limit exceeded"})
		return
	}

	e := c.hub.engine
	switch action.Type {
	case ActionClick:
		result := e.HandleClick()
		c.reply(Message{Type: MsgTypeResult, Payload: map[string]interface{}{
			"action":   ActionClick,
			"amount":   result.Amount.String(),
			"was_crit": result.WasCrit,
		}})

	case ActionBuyProducer:
		var buy BuyPayload
		if err := json.Unmarshal(action.Payload, &buy); err != nil || buy.EntityID == "" {
			c.reply(Message{Type: MsgTypeError, Error: "BUY_PRODUCER requires entity_id"})
			return
		}
		amount := buy.Amount
		if amount <= 0 {
			amount = e.MaxAffordableProducer(buy.EntityID)
		}
		ok := amount > 0 && e.PurchaseProducer(buy.EntityID, amount)
		c.replyPurchase(ActionBuyProducer, buy.EntityID, ok)

	case ActionBuyUpgrade:
		var buy BuyPayload
		if err := json.Unmarshal(action.Payload, &buy); err != nil || buy.EntityID == "" {
			c.reply(Message{Type: MsgTypeError, Error: "BUY_UPGRADE requires entity_id"})
			return
		}
		ok := e.PurchaseUpgrade(buy.EntityID)
		c.replyPurchase(ActionBuyUpgrade, buy.EntityID, ok)

	case ActionBuyClick:
		ok := e.PurchaseClickPower()
		c.reply(Message{Type: MsgTypeResult, Payload: map[string]interface{}{
			"action":  ActionBuyClick,
			"success": ok,
		}})

	case ActionPrestige:
		ok := e.PerformPrestige()
		c.reply(Message{Type: MsgTypeResult, Payload: map[string]interface{}{
			"action":  ActionPrestige,
			"success": ok,
		}})

	case ActionGetState:
		c.reply(Message{Type: MsgTypeState, Payload: e.StateView()})

	default:
		c.reply(Message{Type: MsgTypeError, Error: "unknown action type: " + action.Type})
	}
}

func (c *Client) replyPurchase(action, entityID string, ok bool) {
	c.reply(Message{Type: MsgTypeResult, Payload: map[string]interface{}{
		"action":    action,
		"entity_id": entityID,
		"success":   ok,
	}})
}

// allowAction enforces the per-client actions-per-second ceiling. Pumps run
// one goroutine per client, so no locking is needed here.
func (c *Client) allowAction() bool {
	limit := c.hub.cfg.MaxActionsPerSecond
	if limit <= 0 {
		return true
	}
	now := time.Now()
	if now.Sub(c.windowStart) >= time.Second {
		c.windowStart = now
		c.windowCount = 0
	}
	c.windowCount++
	return c.windowCount <= limit
}

func (c *Client) reply(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		// Client is not draining; the hub will reap it on the next broadcast.
	}
}
