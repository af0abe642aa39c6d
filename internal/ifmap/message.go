package ifmap

import (
	"encoding/json"

	"github.com/contrail/ifmapd/internal/ifmap/queue"
)

// updatePayload is the wire shape of one node/link change folded into a
// batched message.
type updatePayload struct {
	Kind string `json:"kind"`
}

// Message accumulates encoded update/delete entries for a single
// outgoing batch, up to a configurable object count, then renders to a
// JSON envelope addressed to one receiver at a time.
type Message struct {
	objectsPerMessage int
	receiver          string
	items             []updatePayload
	rendered          string
}

// NewMessage returns an empty message with a default batch size; call
// SetObjectsPerMessage to change it.
func NewMessage() *Message {
	return &Message{objectsPerMessage: 64}
}

func (m *Message) SetObjectsPerMessage(n int) { m.objectsPerMessage = n }

func (m *Message) IsEmpty() bool { return len(m.items) == 0 }
func (m *Message) IsFull() bool  { return len(m.items) >= m.objectsPerMessage }

// EncodeUpdate appends entry's change to the batch. The caller owns the
// entry and its state; Message renders only the change's kind (update or
// delete), not the entity's name or type and not the full object payload,
// since the concrete object representation belongs to whatever owns the
// NodeState/LinkState.
func (m *Message) EncodeUpdate(entry *queue.Entry) {
	kind := "update"
	if entry.IsDelete() {
		kind = "delete"
	}
	m.items = append(m.items, updatePayload{Kind: kind})
}

func (m *Message) SetReceiverInMsg(receiver string) { m.receiver = receiver }

// Close renders the accumulated batch to its final string form, keyed to
// the most recently set receiver.
func (m *Message) Close() {
	envelope := struct {
		Receiver string          `json:"receiver"`
		Updates  []updatePayload `json:"updates"`
	}{Receiver: m.receiver, Updates: m.items}

	b, err := json.Marshal(envelope)
	if err != nil {
		m.rendered = ""
		return
	}
	m.rendered = string(b)
}

// String returns the last rendered batch.
func (m *Message) String() string { return m.rendered }

// Reset clears the batch for the next round, keeping the configured
// batch size.
func (m *Message) Reset() {
	m.items = nil
	m.receiver = ""
	m.rendered = ""
}
