// Package exporter implements the central listener on the configuration
// graph's node and link tables. It owns every NodeState/LinkState shadow
// record, decides what to enqueue into the shared update queue on every
// notification, and enforces the dependency ordering that guarantees
// nodes precede link adds referencing them and link deletes precede the
// node deletes they depend on.
package exporter

import (
	"hash/crc32"
	"sync"

	"github.com/contrail/ifmapd/internal/bitset"
	"github.com/contrail/ifmapd/internal/ifmap/graph"
	"github.com/contrail/ifmapd/internal/ifmap/queue"
	"github.com/contrail/ifmapd/internal/ifmap/walker"
)

// Exporter is the sole owner of NodeState/LinkState objects, the update
// queue, and the per-client INTEREST/ADVERTISED secondary indexes.
type Exporter struct {
	mu sync.Mutex

	wl     *graph.WhiteList
	walker *walker.Walker
	q      *queue.UpdateQueue

	nodeStates map[*graph.Node]*graph.NodeState
	linkStates map[*graph.Link]*graph.LinkState

	// interest/advertised trackers: client bit -> set of state objects
	// (boxed *graph.NodeState or *graph.LinkState) currently carrying
	// that bit. Lets ClientUnregister clear a client everywhere without
	// a full table scan.
	interestTracker   map[int]map[interface{}]struct{}
	advertisedTracker map[int]map[interface{}]struct{}

	// anchorBit/anchorNode record which node is the per-client router
	// identifier for a registered client, in both directions.
	anchorBit  map[*graph.Node]int
	anchorNode map[int]*graph.Node

	// QueueActive is called whenever a state's update entry lands on a
	// queue that was previously drained (empty past the last marker) —
	// the sender needs waking. Set by whoever wires the sender to this
	// exporter.
	QueueActive func()
}

// New returns an Exporter constrained to wl's traversal rules, with its
// own dedicated graph walker.
func New(wl *graph.WhiteList) *Exporter {
	e := &Exporter{
		wl:                wl,
		nodeStates:        make(map[*graph.Node]*graph.NodeState),
		linkStates:        make(map[*graph.Link]*graph.LinkState),
		interestTracker:   make(map[int]map[interface{}]struct{}),
		advertisedTracker: make(map[int]map[interface{}]struct{}),
		anchorBit:         make(map[*graph.Node]int),
		anchorNode:        make(map[int]*graph.Node),
	}
	e.q = queue.New(e.stateUpdateOnDequeue)
	e.walker = walker.New(wl, e.nodeStateAccessor, e.walkerNotify)
	return e
}

// Walker returns the exporter's dedicated graph walker, for lifecycle
// management (Start/Stop) by the owning server.
func (e *Exporter) Walker() *walker.Walker { return e.walker }

// Queue returns the shared update queue, for wiring to the sender.
func (e *Exporter) Queue() *queue.UpdateQueue { return e.q }

func (e *Exporter) nodeStateAccessor(n *graph.Node) *graph.NodeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nodeStateLocked(n)
}

func (e *Exporter) nodeStateLocked(n *graph.Node) *graph.NodeState {
	ns, ok := e.nodeStates[n]
	if !ok {
		ns = graph.NewNodeState(n)
		e.nodeStates[n] = ns
	}
	return ns
}

func (e *Exporter) linkStateLocked(l *graph.Link) *graph.LinkState {
	ls, ok := e.linkStates[l]
	if !ok {
		ls = graph.NewLinkState(l)
		e.linkStates[l] = ls
	}
	return ls
}

func (e *Exporter) signalQueueActive() {
	if e.QueueActive != nil {
		e.QueueActive()
	}
}

// --- per-client trackers ---
//
// refreshInterestTracking/refreshAdvertisedTracking reconcile the tracker
// against a state's current bitset for every registered client bit. This
// is cheap: the tracker only ever has as many keys as registered clients,
// and every notification path that mutates interest or advertised runs
// through one of these two functions before returning.

func (e *Exporter) refreshInterestTracking(key interface{}, interest *bitset.BitSet) {
	for bit, m := range e.interestTracker {
		if interest.Test(uint(bit)) {
			m[key] = struct{}{}
		} else {
			delete(m, key)
		}
	}
}

func (e *Exporter) refreshAdvertisedTracking(key interface{}, advertised *bitset.BitSet) {
	for bit, m := range e.advertisedTracker {
		if advertised.Test(uint(bit)) {
			m[key] = struct{}{}
		} else {
			delete(m, key)
		}
	}
}

// --- client lifecycle ---

// ClientRegister allocates the client's position in the queue, creates its
// trackers, and triggers the initial download of its anchor subgraph.
func (e *Exporter) ClientRegister(bit int, anchor *graph.Node) {
	e.mu.Lock()
	e.interestTracker[bit] = make(map[interface{}]struct{})
	e.advertisedTracker[bit] = make(map[interface{}]struct{})
	e.anchorBit[anchor] = bit
	e.anchorNode[bit] = anchor
	e.mu.Unlock()

	e.q.Join(bit)
	e.NodeNotify(anchor)
}

// ClientUnregister walks the client's INTEREST and ADVERTISED trackers to
// clear its bit everywhere it appears, then frees its queue position.
func (e *Exporter) ClientUnregister(bit int) {
	e.mu.Lock()
	var clear bitset.BitSet
	clear.Set(uint(bit))

	for key := range e.interestTracker[bit] {
		switch st := key.(type) {
		case *graph.NodeState:
			st.InterestReset(&clear)
		case *graph.LinkState:
			st.InterestReset(&clear)
		}
	}
	for key := range e.advertisedTracker[bit] {
		switch st := key.(type) {
		case *graph.NodeState:
			st.AdvertisedReset(&clear)
		case *graph.LinkState:
			st.AdvertisedReset(&clear)
		}
	}
	delete(e.interestTracker, bit)
	delete(e.advertisedTracker, bit)
	if anchor, ok := e.anchorNode[bit]; ok {
		delete(e.anchorBit, anchor)
		delete(e.anchorNode, bit)
	}
	e.mu.Unlock()

	e.q.Leave(bit)
}

// TrackerSizes returns the number of entities currently carrying bit in
// its INTEREST and ADVERTISED trackers, for introspection. Both are zero
// for a bit that was never registered.
func (e *Exporter) TrackerSizes(bit int) (interest, advertised int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.interestTracker[bit]), len(e.advertisedTracker[bit])
}

// stateUpdateOnDequeue is the update queue's Leave callback (wired in New):
// when a client unregisters, it is called for every entry ahead of that
// client's marker with the client's bit as subset. The exporter folds
// subset into (or, for a delete, out of) advertised and retires the entry
// from its owning state once its advertise set is empty.
func (e *Exporter) stateUpdateOnDequeue(entry *queue.Entry, subset *bitset.BitSet, isDelete bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch st := entry.State.(type) {
	case *graph.NodeState:
		e.applyDequeue(st, entry, subset, isDelete)
	case *graph.LinkState:
		e.applyDequeue(st, entry, subset, isDelete)
	}
}

// RecordProgress is called by the sender once it has actually transmitted
// sent to every client in that set for entry. It is the normal-path
// counterpart to stateUpdateOnDequeue, which only fires when a client
// unregisters mid-queue.
func (e *Exporter) RecordProgress(entry *queue.Entry, sent *bitset.BitSet) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch st := entry.State.(type) {
	case *graph.NodeState:
		e.applyDequeue(st, entry, sent, entry.IsDelete())
	case *graph.LinkState:
		e.applyDequeue(st, entry, sent, entry.IsDelete())
	}
}

type stateLike interface {
	Advertised() *bitset.BitSet
	AdvertisedOr(*bitset.BitSet)
	AdvertisedReset(*bitset.BitSet)
	GetUpdate(bool) *queue.Entry
	Remove(*queue.Entry)
	UpdateListEmpty() bool
}

func (e *Exporter) applyDequeue(st stateLike, entry *queue.Entry, subset *bitset.BitSet, isDelete bool) {
	if isDelete {
		st.AdvertisedReset(subset)
	} else {
		st.AdvertisedOr(subset)
	}
	e.refreshAdvertisedTracking(st, st.Advertised())

	if entry.Advertise().Empty() {
		st.Remove(entry)
		if isDelete && st.UpdateListEmpty() {
			e.destroyState(st)
		}
	}
}

func (e *Exporter) destroyState(st stateLike) {
	switch v := st.(type) {
	case *graph.NodeState:
		for n, ns := range e.nodeStates {
			if ns == v {
				delete(e.nodeStates, n)
				return
			}
		}
	case *graph.LinkState:
		for l, ls := range e.linkStates {
			if ls == v {
				delete(e.linkStates, l)
				return
			}
		}
	}
}

// walkerNotify is the graph walker's callback: a node's interest bitset
// changed during a traversal pass. The exporter reconciles the INTEREST
// tracker against the new value and re-examines the node exactly as if it
// had received a direct notification.
func (e *Exporter) walkerNotify(n *graph.Node, ns *graph.NodeState) {
	e.mu.Lock()
	e.refreshInterestTracking(ns, ns.Interest())
	e.mu.Unlock()

	e.nodeNotifyFeasible(n, ns)
}

func configCrc(n *graph.Node) uint32 {
	return crc32.ChecksumIEEE([]byte(n.Name + "|" + string(n.Type)))
}

func linkConfigCrc(l *graph.Link) uint32 {
	return crc32.ChecksumIEEE([]byte(string(l.Type) + "|" + l.Left.Name + "|" + l.Right.Name))
}
