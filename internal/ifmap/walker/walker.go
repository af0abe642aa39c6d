// Package walker computes per-node interest bitsets by a white-list
// constrained breadth-first traversal of the configuration graph,
// triggered by link add/remove events from the exporter.
package walker

import (
	"context"
	"sync"

	"github.com/contrail/ifmapd/internal/bitset"
	"github.com/contrail/ifmapd/internal/ifmap/graph"
)

// StateAccessor locates or creates the NodeState shadow record for a node.
// Supplied by the exporter, which owns all state objects.
type StateAccessor func(n *graph.Node) *graph.NodeState

// NotifyFunc is called back whenever a node's interest bitset changes as a
// result of a traversal, so the exporter can re-examine that node's
// add/remove diff against advertised exactly as if the node had been
// notified of a direct change.
type NotifyFunc func(n *graph.Node, ns *graph.NodeState)

type workKind int

const (
	workPropagate workKind = iota
	workRecompute
)

type workItem struct {
	kind  workKind
	start *graph.Node
	bits  *bitset.BitSet
}

// Walker runs a single cooperative worker goroutine draining a FIFO work
// queue, bounding recursion depth the way the original's dedicated task
// does. All mutation of node interest happens on that one goroutine, so
// it never races with itself; callers still need to serialize with the
// exporter's own notification path the way the task-id model requires.
type Walker struct {
	wl       *graph.WhiteList
	state    StateAccessor
	notify   NotifyFunc

	work chan workItem

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New returns a Walker constrained by wl, using state to look up node
// shadow records and notify to report nodes whose interest changed.
func New(wl *graph.WhiteList, state StateAccessor, notify NotifyFunc) *Walker {
	return &Walker{
		wl:     wl,
		state:  state,
		notify: notify,
		work:   make(chan workItem, 256),
	}
}

// Start launches the worker goroutine. Safe to call once.
func (w *Walker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop cancels the worker and waits for it to drain.
func (w *Walker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *Walker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-w.work:
			w.process(item)
		}
	}
}

func (w *Walker) enqueue(item workItem) {
	w.work <- item
}

// FilterNeighbor reports whether an edge from left to its other endpoint
// is allowed by the white-list. Exposed so the exporter can skip
// filtering-excluded adjacencies during a client's initial full-graph
// download without going through the work queue.
func (w *Walker) FilterNeighbor(left *graph.Node, link *graph.Link) bool {
	return w.wl.FilterNeighbor(left, link)
}

// LinkAdd handles a feasible link coming into existence (or becoming
// feasible) between leftState and rightState. For each client interested
// in one endpoint but not yet the other, a traversal closure is scheduled
// to propagate that interest across the new edge and onward.
func (w *Walker) LinkAdd(leftNode, rightNode *graph.Node, leftState, rightState *graph.NodeState) {
	var onlyLeft, onlyRight bitset.BitSet
	onlyLeft.BuildComplement(leftState.Interest(), rightState.Interest())
	onlyRight.BuildComplement(rightState.Interest(), leftState.Interest())

	if onlyLeft.Any() {
		w.enqueue(workItem{kind: workPropagate, start: rightNode, bits: onlyLeft.Clone()})
	}
	if onlyRight.Any() {
		w.enqueue(workItem{kind: workPropagate, start: leftNode, bits: onlyRight.Clone()})
	}
}

// LinkRemove handles a link ceasing to be feasible. mask is the union of
// client bits whose interest might now be invalidated; recompute passes
// are scheduled for both endpoints.
func (w *Walker) LinkRemove(nodes []*graph.Node, mask *bitset.BitSet) {
	for _, n := range nodes {
		w.enqueue(workItem{kind: workRecompute, start: n, bits: mask.Clone()})
	}
}

func (w *Walker) process(item workItem) {
	switch item.kind {
	case workPropagate:
		w.propagate(item.start, item.bits)
	case workRecompute:
		w.recompute(item.start, item.bits)
	}
}

// propagate runs a white-list-constrained BFS from start, OR-ing bits into
// every reached node's interest bitset. A node whose interest changes as
// a result is reported via notify.
func (w *Walker) propagate(start *graph.Node, bits *bitset.BitSet) {
	visited := map[*graph.Node]bool{start: true}
	queue := []*graph.Node{start}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		ns := w.state(n)
		before := ns.Interest().Clone()
		ns.InterestOr(bits)
		if !ns.Interest().Equal(before) && w.notify != nil {
			w.notify(n, ns)
		}

		for _, link := range n.Links() {
			if !link.Feasible() || !w.wl.FilterNeighbor(n, link) {
				continue
			}
			neighbor := link.Other(n)
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			queue = append(queue, neighbor)
		}
	}
}

// recompute re-derives start's interest bitset from the union of its
// feasible, white-list-permitted neighbors' interest, restricted to the
// candidate bits whose validity link removal put in question. A node
// whose recomputed interest differs from its stored interest is reported
// via notify so the exporter re-examines its add/remove diff.
func (w *Walker) recompute(start *graph.Node, candidate *bitset.BitSet) {
	ns := w.state(start)

	var union bitset.BitSet
	for _, link := range start.Links() {
		if !link.Feasible() || !w.wl.FilterNeighbor(start, link) {
			continue
		}
		neighbor := link.Other(start)
		neighborState := w.state(neighbor)
		union.OrAssign(neighborState.Interest())
	}

	var recomputed bitset.BitSet
	recomputed.BuildComplement(ns.Interest(), candidate)
	recomputed.OrAssign(&union)

	if !recomputed.Equal(ns.Interest()) {
		ns.SetInterest(&recomputed)
		if w.notify != nil {
			w.notify(start, ns)
		}
	}
}
