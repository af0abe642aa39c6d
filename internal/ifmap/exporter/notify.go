package exporter

import (
	"github.com/contrail/ifmapd/internal/bitset"
	"github.com/contrail/ifmapd/internal/ifmap/graph"
	"github.com/contrail/ifmapd/internal/ifmap/queue"
)

// NodeNotify is called whenever a node's existence or content may have
// changed: new, deleted, undeleted, or its properties edited. The
// exporter locates (or creates) its shadow NodeState and dispatches to
// the feasible or deleted handling path.
func (e *Exporter) NodeNotify(n *graph.Node) {
	e.mu.Lock()
	ns := e.nodeStateLocked(n)
	e.mu.Unlock()

	if n.Feasible() {
		e.nodeNotifyFeasible(n, ns)
	} else {
		e.nodeNotifyDeleted(n, ns)
	}
}

func (e *Exporter) nodeNotifyFeasible(n *graph.Node, ns *graph.NodeState) {
	e.mu.Lock()

	if bit, ok := e.anchorBit[n]; ok && !ns.Interest().Test(uint(bit)) {
		var self bitset.BitSet
		self.Set(uint(bit))
		ns.InterestOr(&self)
		e.refreshInterestTracking(ns, ns.Interest())
	}

	var addSet, rmSet bitset.BitSet
	addSet.BuildComplement(ns.Interest(), ns.Advertised())
	rmSet.BuildComplement(ns.Advertised(), ns.Interest())

	crc := configCrc(n)
	changed := ns.Crc() != crc || ns.IsInvalid()
	if changed {
		ns.SetCrc(crc)
	}
	ns.SetValid()

	e.mu.Unlock()

	e.updateAddChange(ns, &addSet, changed, e.moveDependentLinks)

	if rmSet.Any() {
		e.removeDependentLinks(ns, &rmSet)
	}
	// Always run, even with an empty rmSet: a previously-enqueued DELETE
	// must be cancelled the moment interest returns for everything it
	// still targets, not left to reach the sender as a stale withdrawal.
	e.updateRemove(ns, &rmSet, nil)
}

func (e *Exporter) nodeNotifyDeleted(n *graph.Node, ns *graph.NodeState) {
	e.mu.Lock()
	ns.ClearValid()
	hasDependents := ns.HasDependents()
	advertised := ns.Advertised().Clone()
	e.mu.Unlock()

	if hasDependents {
		// Dependent links must clear their own advertised state first;
		// once the last one detaches, it re-notifies this node.
		return
	}

	// A deleted entity must never reach a client as a positive ADD: drop
	// any outstanding UPDATE before its DELETE is enqueued.
	e.cancelPendingUpdate(ns)
	e.updateRemove(ns, advertised, nil)

	e.mu.Lock()
	empty := ns.UpdateListEmpty()
	e.mu.Unlock()
	if empty {
		e.mu.Lock()
		e.destroyState(ns)
		e.mu.Unlock()
	}
}

// LinkNotify is called whenever a link's existence may have changed.
func (e *Exporter) LinkNotify(l *graph.Link) {
	e.mu.Lock()
	ls := e.linkStateLocked(l)
	e.mu.Unlock()

	if l.Feasible() {
		e.linkNotifyFeasible(l, ls)
	} else {
		e.linkNotifyDeleted(l, ls)
	}
}

func (e *Exporter) linkNotifyFeasible(l *graph.Link, ls *graph.LinkState) {
	e.mu.Lock()
	if !ls.HasDependency() {
		left := e.nodeStateLocked(l.Left)
		right := e.nodeStateLocked(l.Right)
		ls.SetDependency(left, right)
	}
	left, right := ls.Left(), ls.Right()

	var newInterest bitset.BitSet
	newInterest.BuildIntersection(left.Interest(), right.Interest())
	ls.SetInterest(&newInterest)
	e.refreshInterestTracking(ls, ls.Interest())

	var addSet, rmSet bitset.BitSet
	addSet.BuildComplement(ls.Interest(), ls.Advertised())
	rmSet.BuildComplement(ls.Advertised(), ls.Interest())
	e.mu.Unlock()

	e.walker.LinkAdd(l.Left, l.Right, left, right)

	if addSet.Any() {
		e.processAdjacentNode(l.Left, left, &addSet)
		e.processAdjacentNode(l.Right, right, &addSet)
	}

	crc := linkConfigCrc(l)
	e.mu.Lock()
	changed := ls.Crc() != crc || ls.IsInvalid()
	if changed {
		ls.SetCrc(crc)
	}
	ls.SetValid()
	e.mu.Unlock()

	e.updateAddChange(ls, &addSet, changed, nil)

	// Always run, even with an empty rmSet: see nodeNotifyFeasible.
	e.updateRemove(ls, &rmSet, nil)
}

// processAdjacentNode forces a node re-notify if its own pending UPDATE
// does not yet cover bits newly entering a link's interest, so the node
// is guaranteed to be enqueued ahead of the link that references it.
func (e *Exporter) processAdjacentNode(n *graph.Node, ns *graph.NodeState, bits *bitset.BitSet) {
	e.mu.Lock()
	existing := ns.GetUpdate(false)
	covers := existing != nil && existing.Advertise().Contains(bits)
	e.mu.Unlock()

	if !covers {
		e.NodeNotify(n)
	}
}

func (e *Exporter) linkNotifyDeleted(l *graph.Link, ls *graph.LinkState) {
	e.mu.Lock()
	if !ls.HasDependency() {
		e.mu.Unlock()
		return
	}
	left, right := ls.Left(), ls.Right()

	var newInterest bitset.BitSet
	newInterest.BuildIntersection(left.Interest(), right.Interest())
	ls.SetInterest(&newInterest)
	e.refreshInterestTracking(ls, ls.Interest())

	mask := ls.Advertised().Clone()
	advertised := ls.Advertised().Clone()
	e.mu.Unlock()

	e.walker.LinkRemove([]*graph.Node{l.Left, l.Right}, mask)

	e.mu.Lock()
	ls.RemoveDependency()
	e.mu.Unlock()

	// A deleted link must never reach a client as a positive ADD: drop
	// any outstanding UPDATE before its DELETE is enqueued.
	e.cancelPendingUpdate(ls)
	e.updateRemove(ls, advertised, nil)

	if !l.Left.Feasible() && !left.HasDependents() {
		e.NodeNotify(l.Left)
	}
	if !l.Right.Feasible() && !right.HasDependents() {
		e.NodeNotify(l.Right)
	}
}

// removeDependentLinks re-examines every link depending on ns whose
// advertised set intersects rmSet, so the link's own delete is enqueued
// (and reaches clients) before ns's delete can.
func (e *Exporter) removeDependentLinks(ns *graph.NodeState, rmSet *bitset.BitSet) {
	e.mu.Lock()
	deps := ns.Dependents()
	e.mu.Unlock()

	for _, ls := range deps {
		if ls.Advertised().Intersects(rmSet) {
			e.LinkNotify(ls.Link())
		}
	}
}

// moveDependentLinks re-enqueues at the tail the pending UPDATE of every
// link depending on ns, preserving the invariant that a node's update
// always precedes the updates of links referencing it.
func (e *Exporter) moveDependentLinks(owner interface{}) {
	ns, ok := owner.(*graph.NodeState)
	if !ok {
		return
	}
	e.mu.Lock()
	deps := ns.Dependents()
	e.mu.Unlock()

	for _, ls := range deps {
		e.mu.Lock()
		u := ls.GetUpdate(false)
		e.mu.Unlock()
		if u == nil {
			continue
		}
		e.mu.Lock()
		e.q.Dequeue(u)
		tailWasLast := e.q.Enqueue(u)
		e.mu.Unlock()
		if tailWasLast {
			e.signalQueueActive()
		}
	}
}

// --- shared update/remove sequencing for node and link states ---
//
// updateAddChange and updateRemove implement the single rule that both
// node and link notification paths funnel through: an UPDATE/DELETE entry
// is created the first time a state has anything to advertise. An existing
// entry is never mutated in place: every interest add or content change
// dequeues it, updates its advertise set and re-enqueues it at the tail (a
// "move"), after which afterMove runs. Whether any client has already
// consumed the entry is not tracked, so an entry that no client has
// reached yet is moved as well.

type notifyState interface {
	Interest() *bitset.BitSet
	Advertised() *bitset.BitSet
	GetUpdate(bool) *queue.Entry
	Insert(*queue.Entry)
	Remove(*queue.Entry)
}

func (e *Exporter) updateAddChange(st notifyState, addSet *bitset.BitSet, changed bool, afterMove func(interface{})) {
	e.mu.Lock()
	existing := st.GetUpdate(false)
	interestEmpty := st.Interest().Empty()

	if existing == nil {
		if interestEmpty || (addSet.Empty() && !changed) {
			e.mu.Unlock()
			return
		}
		entry := queue.NewUpdate(st, false)
		if changed {
			entry.SetAdvertise(st.Interest())
		} else {
			entry.SetAdvertise(addSet)
		}
		if entry.Advertise().Empty() {
			e.mu.Unlock()
			return
		}
		st.Insert(entry)
		tailWasLast := e.q.Enqueue(entry)
		e.mu.Unlock()
		if tailWasLast {
			e.signalQueueActive()
		}
		return
	}

	if interestEmpty {
		e.q.Dequeue(existing)
		st.Remove(existing)
		e.mu.Unlock()
		return
	}

	if addSet.Empty() && !changed {
		e.mu.Unlock()
		return
	}

	e.q.Dequeue(existing)
	if changed {
		existing.SetAdvertise(st.Interest())
	} else {
		existing.AdvertiseOr(addSet)
	}
	tailWasLast := e.q.Enqueue(existing)
	e.mu.Unlock()

	if tailWasLast {
		e.signalQueueActive()
	}
	if afterMove != nil {
		afterMove(st)
	}
}

// cancelPendingUpdate discards st's outstanding positive UPDATE, if any,
// without enqueuing anything in its place. Callers use this to guarantee a
// deleted entity can never reach the sender as an ADD: the delete path
// must cancel a stale UPDATE before its own DELETE goes out, mirroring the
// original exporter's EnqueueDelete, which dequeues and destroys any
// pending update as its first action.
func (e *Exporter) cancelPendingUpdate(st notifyState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing := st.GetUpdate(false)
	if existing == nil {
		return
	}
	e.q.Dequeue(existing)
	st.Remove(existing)
}

// updateRemove reconciles st's pending DELETE against target, the full set
// of clients that should currently be withdrawn from (not merely the bits
// newly added to it). Called unconditionally, including with an empty
// target: that is precisely how a stale DELETE gets cancelled once
// interest returns for everything it still carried, rather than surviving
// in the queue to wrongly withdraw the entity from a client that regained
// interest before the sender caught up.
func (e *Exporter) updateRemove(st notifyState, target *bitset.BitSet, afterMove func(interface{})) {
	e.mu.Lock()
	existing := st.GetUpdate(true)

	if target.Empty() {
		if existing != nil {
			e.q.Dequeue(existing)
			st.Remove(existing)
		}
		e.mu.Unlock()
		return
	}

	if existing != nil {
		e.q.Dequeue(existing)
		existing.SetAdvertise(target)
		tailWasLast := e.q.Enqueue(existing)
		e.mu.Unlock()
		if tailWasLast {
			e.signalQueueActive()
		}
		if afterMove != nil {
			afterMove(st)
		}
		return
	}

	entry := queue.NewUpdate(st, true)
	entry.SetAdvertise(target)
	st.Insert(entry)
	tailWasLast := e.q.Enqueue(entry)
	e.mu.Unlock()
	if tailWasLast {
		e.signalQueueActive()
	}
}
