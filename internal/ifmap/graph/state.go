package graph

import (
	"github.com/contrail/ifmapd/internal/bitset"
	"github.com/contrail/ifmapd/internal/ifmap/queue"
)

// State is the shadow record shared by NodeState and LinkState: the set of
// clients entitled to see the entity, the set that has actually received
// it, at most one pending UPDATE and one pending DELETE queue entry, and a
// content fingerprint used to detect meaningful changes.
type State struct {
	interest   bitset.BitSet
	advertised bitset.BitSet

	update *queue.Entry // pending UPDATE entry, nil if none outstanding
	del    *queue.Entry // pending DELETE entry, nil if none outstanding

	valid bool
	crc   uint32
}

func (s *State) Interest() *bitset.BitSet   { return &s.interest }
func (s *State) Advertised() *bitset.BitSet { return &s.advertised }

func (s *State) SetInterest(b *bitset.BitSet)   { s.interest = *b.Clone() }
func (s *State) InterestOr(b *bitset.BitSet)    { s.interest.OrAssign(b) }
func (s *State) InterestReset(b *bitset.BitSet) { s.interest.Subtract(b) }

func (s *State) AdvertisedOr(b *bitset.BitSet)    { s.advertised.OrAssign(b) }
func (s *State) AdvertisedReset(b *bitset.BitSet) { s.advertised.Subtract(b) }

// GetUpdate returns the pending entry of the requested kind, or nil.
func (s *State) GetUpdate(isDelete bool) *queue.Entry {
	if isDelete {
		return s.del
	}
	return s.update
}

// Insert records entry as this state's pending UPDATE or DELETE, per its
// kind. At most one of each may be outstanding at a time.
func (s *State) Insert(entry *queue.Entry) {
	if entry.IsDelete() {
		s.del = entry
	} else {
		s.update = entry
	}
}

// Remove clears entry from whichever slot holds it.
func (s *State) Remove(entry *queue.Entry) {
	if s.update == entry {
		s.update = nil
	}
	if s.del == entry {
		s.del = nil
	}
}

// UpdateListEmpty reports whether no UPDATE or DELETE is outstanding.
func (s *State) UpdateListEmpty() bool { return s.update == nil && s.del == nil }

func (s *State) SetValid()        { s.valid = true }
func (s *State) ClearValid()      { s.valid = false }
func (s *State) IsValid() bool    { return s.valid }
func (s *State) IsInvalid() bool  { return !s.valid }
func (s *State) Crc() uint32      { return s.crc }
func (s *State) SetCrc(crc uint32) { s.crc = crc }

// NodeState is the Exporter's shadow record for a Node.
type NodeState struct {
	State

	node       *Node
	dependents map[*LinkState]struct{} // weak back-pointers, never own

	// NMask is graph-walker scratch space: the newly computed interest
	// bitset for this node, populated during a traversal pass and
	// compared against Interest() to decide whether to notify the node
	// as changed.
	NMask bitset.BitSet
}

func NewNodeState(n *Node) *NodeState {
	return &NodeState{node: n, dependents: make(map[*LinkState]struct{})}
}

func (ns *NodeState) Node() *Node { return ns.node }

// HasDependents reports whether any LinkState still depends on ns.
func (ns *NodeState) HasDependents() bool { return len(ns.dependents) > 0 }

// AddDependent registers ls as depending on ns (called when ls sets its
// endpoint reference to ns).
func (ns *NodeState) AddDependent(ls *LinkState) { ns.dependents[ls] = struct{}{} }

// RemoveDependent drops ls from ns's dependent set.
func (ns *NodeState) RemoveDependent(ls *LinkState) { delete(ns.dependents, ls) }

// Dependents returns the set of LinkStates currently depending on ns.
func (ns *NodeState) Dependents() []*LinkState {
	out := make([]*LinkState, 0, len(ns.dependents))
	for ls := range ns.dependents {
		out = append(out, ls)
	}
	return out
}

// LinkState is the Exporter's shadow record for a Link. It strongly
// references its two endpoint NodeStates, guaranteeing they outlive the
// link's shadow record.
type LinkState struct {
	State

	link        *Link
	left, right *NodeState
}

func NewLinkState(l *Link) *LinkState {
	return &LinkState{link: l}
}

func (ls *LinkState) Link() *Link { return ls.link }

// SetDependency establishes the strong endpoint references and registers
// ls as a dependent of each.
func (ls *LinkState) SetDependency(left, right *NodeState) {
	ls.left, ls.right = left, right
	left.AddDependent(ls)
	right.AddDependent(ls)
}

// RemoveDependency tears down the endpoint references, unregistering ls
// from each endpoint's dependent set.
func (ls *LinkState) RemoveDependency() {
	if ls.left != nil {
		ls.left.RemoveDependent(ls)
	}
	if ls.right != nil {
		ls.right.RemoveDependent(ls)
	}
	ls.left, ls.right = nil, nil
}

func (ls *LinkState) HasDependency() bool { return ls.left != nil && ls.right != nil }
func (ls *LinkState) Left() *NodeState    { return ls.left }
func (ls *LinkState) Right() *NodeState   { return ls.right }
