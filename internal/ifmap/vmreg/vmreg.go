// Package vmreg maps virtual-machine UUIDs (as presented by a compute
// node's subscribe/unsubscribe requests) onto the corresponding
// virtual-machine node in the configuration graph. A subscribe that
// arrives before the node exists, or while it is marked deleted, is
// held in a pending list and replayed once the node becomes available.
package vmreg

import "sync"

// SubscribeFunc is invoked once a pending or immediate registration
// resolves against a live node, so the caller can wire (or unwire) the
// dependency between the requesting router and the VM's subgraph.
type SubscribeFunc func(vrName, uuid string, subscribe bool)

type pendingReg struct {
	vrName    string
	subscribe bool
	seq       uint64
}

// Mapper is the UUID<->node registry plus its pending-subscription queue.
type Mapper struct {
	mu sync.Mutex

	uuidToNode map[string]string // uuid -> node name, once the node exists and is feasible
	nodeToUUID map[string]string // node name -> uuid, reverse index

	pending map[string]pendingReg // uuid -> most recent unresolved subscribe/unsubscribe

	OnResolve SubscribeFunc
}

// New returns an empty Mapper.
func New() *Mapper {
	return &Mapper{
		uuidToNode: make(map[string]string),
		nodeToUUID: make(map[string]string),
		pending:    make(map[string]pendingReg),
	}
}

// VmNodeExists reports whether uuid currently maps to a live node.
func (m *Mapper) VmNodeExists(uuid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.uuidToNode[uuid]
	return ok
}

// GetVmNodeByUUID returns the node name mapped to uuid, or "" if none.
func (m *Mapper) GetVmNodeByUUID(uuid string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.uuidToNode[uuid]
	return name, ok
}

func (m *Mapper) UuidMapperCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uuidToNode)
}

func (m *Mapper) NodeUuidMapCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodeToUUID)
}

func (m *Mapper) PendingVmRegCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// PendingVmRegExists reports whether uuid has an unresolved
// subscription, returning the requesting router's name.
func (m *Mapper) PendingVmRegExists(uuid string) (vrName string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pending[uuid]
	if !ok {
		return "", false
	}
	return p.vrName, true
}

// ProcessVmSubscribe records a compute node's interest (subscribe=true)
// or disinterest (subscribe=false) in the VM identified by uuid. If the
// node already exists, the registration resolves immediately; otherwise
// it is parked in the pending list, replacing any earlier unresolved
// request for the same uuid — a later unsubscribe for a still-pending
// uuid simply drops the pending entry rather than ever resolving.
func (m *Mapper) ProcessVmSubscribe(vrName, uuid string, subscribe bool, seq uint64) {
	m.mu.Lock()
	_, exists := m.uuidToNode[uuid]
	if !exists {
		if !subscribe {
			delete(m.pending, uuid)
			m.mu.Unlock()
			return
		}
		m.pending[uuid] = pendingReg{vrName: vrName, subscribe: subscribe, seq: seq}
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if m.OnResolve != nil {
		m.OnResolve(vrName, uuid, subscribe)
	}
}

// VmNodeProcess registers (feasible=true) or unregisters (feasible=false)
// the live node backing uuid. Registering a uuid that has a pending
// subscription immediately resolves and clears it.
func (m *Mapper) VmNodeProcess(nodeName, uuid string, feasible bool) {
	m.mu.Lock()
	if !feasible {
		delete(m.uuidToNode, uuid)
		delete(m.nodeToUUID, nodeName)
		m.mu.Unlock()
		return
	}

	m.uuidToNode[uuid] = nodeName
	m.nodeToUUID[nodeName] = uuid
	pending, hasPending := m.pending[uuid]
	if hasPending {
		delete(m.pending, uuid)
	}
	m.mu.Unlock()

	if hasPending && m.OnResolve != nil {
		m.OnResolve(pending.vrName, uuid, pending.subscribe)
	}
}
