package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/contrail/ifmapd/config"
	"github.com/contrail/ifmapd/internal/bitset"
	"github.com/contrail/ifmapd/internal/ifmap"
	"github.com/contrail/ifmapd/internal/ifmap/exporter"
	"github.com/contrail/ifmapd/internal/ifmap/graph"
	"github.com/contrail/ifmapd/internal/ifmap/queue"
	"github.com/contrail/ifmapd/internal/ifmap/sender"
	"github.com/contrail/ifmapd/internal/ifmap/vmreg"
	"github.com/contrail/ifmapd/logger"
)

// Hub owns every registered client connection and wires it to the
// configuration graph, exporter, and sender: a client's registration adds
// an anchor node and an allocated bitset index; its unregistration frees
// the index and leaves the anchor node in the graph.
type Hub struct {
	cfg *config.Config

	store    *graph.Store
	exporter *exporter.Exporter
	sender   *sender.Sender
	vmap     *vmreg.Mapper
	indices  *bitset.IndexAllocator

	mu      sync.RWMutex
	clients map[int]*WSClient // keyed by allocated bitset index

	register   chan *WSClient
	unregister chan *WSClient

	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	state  atomic.Int32

	httpServer *http.Server
}

// NewHub builds a hub from cfg's whitelist table. The whitelist is loaded
// eagerly so a misconfigured path fails at startup, not on first client
// registration.
func NewHub(cfg *config.Config) (*Hub, error) {
	wl, err := graph.LoadWhiteList(cfg.WhiteList.Path)
	if err != nil {
		return nil, err
	}

	store := graph.NewStore()
	exp := exporter.New(wl)
	store.OnNodeNotify = exp.NodeNotify
	store.OnLinkNotify = exp.LinkNotify

	h := &Hub{
		cfg:        cfg,
		store:      store,
		exporter:   exp,
		vmap:       vmreg.New(),
		indices:    bitset.NewIndexAllocator(uint(cfg.Clients.Max)),
		clients:    make(map[int]*WSClient),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		upgrader:   newUpgrader(),
	}
	h.sender = sender.New(exp.Queue(), exp, h.clientAt)
	h.sender.SetObjectsPerMessage(cfg.Message.ObjectsPerMessage)
	exp.QueueActive = h.sender.QueueActive
	h.vmap.OnResolve = h.onVMResolve

	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.state.Store(int32(ServerStateRunning))
	return h, nil
}

// clientAt implements sender.ClientProvider.
func (h *Hub) clientAt(index int) ifmap.Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[index]
	if !ok {
		return nil
	}
	return c
}

// onVMResolve is vmreg's SubscribeFunc: it marks the resolved virtual
// machine node feasible or deleted so the exporter walks the subscribing
// compute node's subgraph accordingly.
func (h *Hub) onVMResolve(vrName, uuid string, subscribe bool) {
	nodeName, ok := h.vmap.GetVmNodeByUUID(uuid)
	if !ok {
		return
	}
	if subscribe {
		h.store.EnsureNode(nodeName, "virtual-machine")
	} else {
		h.store.DeleteNode(nodeName)
	}
}

// handleVMSubscribe processes an inbound vm_subscribe frame from c.
func (h *Hub) handleVMSubscribe(c *WSClient, msg VMSubscribeMessage) {
	h.vmap.ProcessVmSubscribe(msg.VrName, msg.VmUUID, msg.Subscribe, 0)
}

// ServeWS upgrades r into a WebSocket connection, performs the subscribe
// handshake, and registers the resulting client with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logger.Warnw("websocket upgrade failed", "error", err.Error())
		return
	}

	var sub SubscribeMessage
	if err := conn.ReadJSON(&sub); err != nil {
		logger.Logger.Warnw("subscribe handshake failed", "error", err.Error())
		conn.Close()
		return
	}

	c := newWSClient(h, conn, sub.ClientName)
	anchor := h.store.EnsureNode(sub.AnchorNode, graph.NodeType(sub.AnchorType))

	select {
	case h.register <- c:
	case <-h.ctx.Done():
		conn.Close()
		return
	}

	h.wg.Add(2)
	go func() { defer h.wg.Done(); c.writePump() }()
	go func() { defer h.wg.Done(); c.readPump() }()

	logger.Logger.Infow("client registered", "client", c.identifier, "anchor", anchor.Name)
}

// handleRegister assigns a fresh bitset index to c and wires it into the
// exporter and sender, rejecting the connection if the configured client
// limit is already reached.
func (h *Hub) handleRegister(c *WSClient) {
	h.mu.Lock()
	if len(h.clients) >= h.cfg.Clients.Max {
		h.mu.Unlock()
		logger.Logger.Warnw("client limit reached, rejecting connection",
			"client", c.identifier, "max", h.cfg.Clients.Max)
		c.close()
		return
	}

	idx := h.indices.AllocIndex()
	if idx == bitset.NPos {
		h.mu.Unlock()
		logger.Logger.Warnw("no free client index", "client", c.identifier)
		c.close()
		return
	}
	c.bit = int(idx)
	h.clients[c.bit] = c
	total := len(h.clients)
	h.mu.Unlock()

	anchor := h.store.GetNode(c.identifier)
	h.exporter.ClientRegister(c.bit, anchor)

	logger.Logger.Infow("client online", "client", c.identifier, "bit", c.bit, "total_clients", total)
}

// handleUnregister frees c's bitset index and tears down its exporter and
// sender state.
func (h *Hub) handleUnregister(c *WSClient) {
	h.mu.Lock()
	if _, ok := h.clients[c.bit]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.bit)
	total := len(h.clients)
	h.mu.Unlock()

	h.exporter.ClientUnregister(c.bit)
	h.sender.CleanupClient(c.bit)
	h.indices.FreeIndex(uint(c.bit))
	c.close()

	logger.Logger.Infow("client offline", "client", c.identifier, "total_clients", total)
}

// Run is the hub's single-writer event loop: every client registration and
// unregistration is serialized through it. Queue-active wakeups go straight
// to the sender and do not pass through this loop.
func (h *Hub) Run() {
	h.sender.Start(h.ctx)
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		}
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Queue exposes the update queue for introspection.
func (h *Hub) Queue() *queue.UpdateQueue { return h.exporter.Queue() }
