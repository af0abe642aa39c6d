package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/contrail/ifmapd/internal/ifmap"
	"github.com/contrail/ifmapd/logger"
)

// WSClient adapts a WebSocket connection to the ifmap.Client contract.
// One WSClient exists per connected router or compute-node agent.
type WSClient struct {
	ifmap.ClientStats

	hub  *Hub
	conn *websocket.Conn

	// identifier is the stable name the sender and exporter key this
	// client by (the subscribe handshake's client_name).
	identifier string
	// bit is this client's slot in the exporter/sender bitset, assigned
	// at registration.
	bit int

	send      chan string
	closeOnce sync.Once

	// wakeup rate-limits re-triggers of SendActive while this client's
	// send channel is full, so a persistently blocked client doesn't
	// cause the sender to spin retrying it every update.
	wakeup *rate.Limiter
}

// newWSClient wraps conn for hub and assigns it identifier.
func newWSClient(hub *Hub, conn *websocket.Conn, identifier string) *WSClient {
	return &WSClient{
		hub:        hub,
		conn:       conn,
		identifier: identifier,
		send:       make(chan string, MaxClientMessageQueueSize),
		wakeup:     rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
	}
}

// Identifier implements ifmap.Client.
func (c *WSClient) Identifier() string { return c.identifier }

// Name implements ifmap.Client.
func (c *WSClient) Name() string { return c.identifier }

// SendUpdate implements ifmap.Client. false means the send channel is
// full; the caller (the sender) should stop scheduling this client until
// a later wakeup.
func (c *WSClient) SendUpdate(msg string) bool {
	select {
	case c.send <- msg:
		c.IncrMsgsSent()
		return true
	default:
		c.IncrMsgsBlocked()
		return false
	}
}

// allowWakeup reports whether enough time has passed to re-trigger
// SendActive for this client after a blocked send.
func (c *WSClient) allowWakeup() bool {
	return c.wakeup.Allow()
}

func (c *WSClient) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump reads frames from the connection and routes vm_subscribe frames
// to the hub; the subscribe handshake is read earlier by ServeWS, and any
// other frame type except ping is logged and dropped. It runs until the
// connection errors or closes, then unregisters the client.
func (c *WSClient) readPump() {
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
			c.handleReadError(err)
			return
		}

		var env clientMessage
		if err := json.Unmarshal(raw, &env); err != nil {
			logger.Logger.Warnw("discarding malformed client message",
				"client", c.identifier, "error", err.Error())
			continue
		}

		c.routeMessage(env.Type, raw)
	}
}

func (c *WSClient) handleReadError(err error) {
	if closeErr, ok := err.(*websocket.CloseError); ok {
		logger.Logger.Infow("client connection closed",
			"client", c.identifier, "code", closeErr.Code, "text", closeErr.Text)
		return
	}
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		logger.Logger.Warnw("client read error",
			"client", c.identifier, "error", err.Error())
	}
}

func (c *WSClient) routeMessage(msgType string, raw []byte) {
	switch msgType {
	case "vm_subscribe":
		var msg VMSubscribeMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Logger.Warnw("malformed vm_subscribe", "client", c.identifier, "error", err.Error())
			return
		}
		c.hub.handleVMSubscribe(c, msg)
	case "ping":
		// deadline already refreshed by the pong handler
	default:
		logger.Logger.Debugw("unknown client message type", "client", c.identifier, "type", msgType)
	}
}

// writePump drains the send channel to the connection and keeps it alive
// with periodic pings, stopping when the hub shuts down or the channel
// is closed.
func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.hub.ctx.Done():
			return
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				logger.Logger.Warnw("client write error", "client", c.identifier, "error", err.Error())
				return
			}
			// Draining a message means the send channel just freed a slot;
			// if the sender had given up on this client as blocked, this is
			// the moment to let it retry. Rate-limited so a persistently
			// blocked client doesn't cause the sender to spin.
			if c.allowWakeup() {
				c.hub.sender.SendActive(c.bit)
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
