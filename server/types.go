package server

import "time"

const (
	// MaxClientMessageQueueSize is the size of a client's outgoing send
	// channel. A full channel is this session's "write blocked" signal,
	// which the sender interprets as ClientWriteFailure.
	MaxClientMessageQueueSize = 256

	// ShutdownTimeout is how long Stop waits for the hub, sender, and
	// every client pump to drain before forcing a return.
	ShutdownTimeout = 20 * time.Second
)

// WebSocket timeout constants, Gorilla's documented chat-example values.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 * 1024
)

// ServerState is the hub's own lifecycle state, independent of any one
// client connection.
type ServerState int

const (
	ServerStateRunning  ServerState = iota // accepting connections, sender active
	ServerStateDraining                    // Stop called, closing clients
	ServerStateStopped                     // shutdown complete
)

func (s ServerState) String() string {
	switch s {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// SubscribeMessage is the client handshake: the router identifies itself
// and its own anchor node (spec.md §6 "the per-client router identifier").
type SubscribeMessage struct {
	Type       string `json:"type"` // "subscribe"
	ClientName string `json:"client_name"`
	AnchorNode string `json:"anchor_node"`
	AnchorType string `json:"anchor_type"`
}

// VMSubscribeMessage carries a compute node's interest (or disinterest)
// in a virtual machine's subgraph, keyed by the VM's UUID (spec.md §6
// "Consumed from the VM registry").
type VMSubscribeMessage struct {
	Type      string `json:"type"` // "vm_subscribe"
	VrName    string `json:"vr_name"`
	VmUUID    string `json:"vm_uuid"`
	Subscribe bool   `json:"subscribe"`
}

// clientMessage is the tagged envelope every inbound client frame is
// decoded into before dispatch; only Type is inspected before deciding
// which concrete message to re-decode into.
type clientMessage struct {
	Type string `json:"type"`
}
