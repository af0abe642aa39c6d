// Package graph is the in-process configuration graph: typed nodes and
// links, and the per-entity shadow state (NodeState/LinkState) the
// exporter maintains to track per-client interest and advertisement. This
// is not a visualization graph — it exists purely to drive the export
// pipeline.
package graph

// NodeType identifies the kind of a configuration node, e.g. a virtual
// router, virtual machine, or virtual network identifier.
type NodeType string

// LinkType identifies the kind of metadata connecting two nodes.
type LinkType string

// Node is a typed identifier in the configuration graph.
type Node struct {
	Name    string
	Type    NodeType
	Deleted bool

	links []*Link
}

// Links returns the node's adjacency list (outgoing and incoming edges;
// this graph is undirected for traversal purposes).
func (n *Node) Links() []*Link { return n.links }

// AddLink records link as incident to n. Called from both endpoints when a
// link is created.
func (n *Node) AddLink(l *Link) {
	n.links = append(n.links, l)
}

// RemoveLink drops link from n's adjacency list.
func (n *Node) RemoveLink(l *Link) {
	for i, cur := range n.links {
		if cur == l {
			n.links = append(n.links[:i], n.links[i+1:]...)
			return
		}
	}
}

// Feasible reports whether the node exists in a usable state: present and
// not marked deleted.
func (n *Node) Feasible() bool { return n != nil && !n.Deleted }

// Link is an edge with metadata connecting two nodes.
type Link struct {
	Type         LinkType
	Left, Right  *Node
	Deleted      bool
}

// Feasible reports whether the link and both its endpoints exist and are
// not deleted.
func (l *Link) Feasible() bool {
	return l != nil && !l.Deleted && l.Left.Feasible() && l.Right.Feasible()
}

// Other returns the endpoint of l that isn't n.
func (l *Link) Other(n *Node) *Node {
	if l.Left == n {
		return l.Right
	}
	return l.Left
}
