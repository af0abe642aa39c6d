// Package ifmap defines the client-facing contract the update sender
// transmits against, independent of whatever transport a concrete server
// binds it to.
package ifmap

import "sync/atomic"

// Client is the per-connection peer that receives IFMAP updates. A
// concrete implementation (e.g. a websocket session) adapts its
// transport to this interface; the sender only ever talks to it through
// here.
type Client interface {
	// Identifier is the stable per-session identity used as the message
	// receiver field, e.g. the session's router/host name.
	Identifier() string

	// Name is a human-readable label, for logs and introspection.
	Name() string

	// SendUpdate transmits one encoded message. false indicates the
	// client's send buffer is full and the sender should stop scheduling
	// it until a later SendActive.
	SendUpdate(msg string) bool
}

// ClientStats tracks per-client delivery counters, matching the
// bookkeeping the original sender keeps per connected peer. Safe for
// concurrent use; embed in a concrete Client implementation.
type ClientStats struct {
	msgsSent        uint64
	msgsBlocked     uint64
	updateNodesSent uint64
	deleteNodesSent uint64
	updateLinksSent uint64
	deleteLinksSent uint64
}

func (s *ClientStats) IncrMsgsSent()        { atomic.AddUint64(&s.msgsSent, 1) }
func (s *ClientStats) IncrMsgsBlocked()     { atomic.AddUint64(&s.msgsBlocked, 1) }
func (s *ClientStats) IncrUpdateNodesSent() { atomic.AddUint64(&s.updateNodesSent, 1) }
func (s *ClientStats) IncrDeleteNodesSent() { atomic.AddUint64(&s.deleteNodesSent, 1) }
func (s *ClientStats) IncrUpdateLinksSent() { atomic.AddUint64(&s.updateLinksSent, 1) }
func (s *ClientStats) IncrDeleteLinksSent() { atomic.AddUint64(&s.deleteLinksSent, 1) }

func (s *ClientStats) MsgsSent() uint64        { return atomic.LoadUint64(&s.msgsSent) }
func (s *ClientStats) MsgsBlocked() uint64     { return atomic.LoadUint64(&s.msgsBlocked) }
func (s *ClientStats) UpdateNodesSent() uint64 { return atomic.LoadUint64(&s.updateNodesSent) }
func (s *ClientStats) DeleteNodesSent() uint64 { return atomic.LoadUint64(&s.deleteNodesSent) }
func (s *ClientStats) UpdateLinksSent() uint64 { return atomic.LoadUint64(&s.updateLinksSent) }
func (s *ClientStats) DeleteLinksSent() uint64 { return atomic.LoadUint64(&s.deleteLinksSent) }
