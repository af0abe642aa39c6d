package graph

// WhiteList is the static table of allowed (node-type, link-type,
// neighbor-type) triples used to constrain graph traversal. A traversal
// from a node of type left over a link of type via to a node of type
// right is permitted only if that triple has been allowed.
type WhiteList struct {
	rules map[NodeType]map[LinkType]map[NodeType]bool
}

// NewWhiteList returns an empty white-list; nothing is allowed until
// Allow is called.
func NewWhiteList() *WhiteList {
	return &WhiteList{rules: make(map[NodeType]map[LinkType]map[NodeType]bool)}
}

// Allow permits traversal from left over via to right. White-lists are
// directional: allowing left->right does not imply right->left, matching
// how the original traversal rule table is configured per node type.
func (w *WhiteList) Allow(left NodeType, via LinkType, right NodeType) {
	byLink, ok := w.rules[left]
	if !ok {
		byLink = make(map[LinkType]map[NodeType]bool)
		w.rules[left] = byLink
	}
	byRight, ok := byLink[via]
	if !ok {
		byRight = make(map[NodeType]bool)
		byLink[via] = byRight
	}
	byRight[right] = true
}

// Permits reports whether traversal from left over via to right is
// allowed.
func (w *WhiteList) Permits(left NodeType, via LinkType, right NodeType) bool {
	byLink, ok := w.rules[left]
	if !ok {
		return false
	}
	byRight, ok := byLink[via]
	if !ok {
		return false
	}
	return byRight[right]
}

// FilterNeighbor reports whether traversal is allowed across link from
// left to its other endpoint. Used both by the walker (to constrain BFS)
// and by the exporter (to skip filtering-excluded adjacencies during a
// client's initial full-graph download).
func (w *WhiteList) FilterNeighbor(left *Node, link *Link) bool {
	right := link.Other(left)
	if right == nil {
		return false
	}
	return w.Permits(left.Type, link.Type, right.Type)
}
