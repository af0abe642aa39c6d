package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_EnsureNodeCreatesOnce(t *testing.T) {
	s := NewStore()
	var notified int
	s.OnNodeNotify = func(n *Node) { notified++ }

	n1 := s.EnsureNode("vr:c1", "virtual-router")
	n2 := s.EnsureNode("vr:c1", "virtual-router")

	assert.Same(t, n1, n2)
	assert.Equal(t, 1, notified)
	assert.Equal(t, 1, s.NodeCount())
}

func TestStore_DeleteNodeNotifiesAndUndeleteRenotifies(t *testing.T) {
	s := NewStore()
	var notifications []bool
	s.OnNodeNotify = func(n *Node) { notifications = append(notifications, n.Deleted) }

	s.EnsureNode("vr:c1", "virtual-router")
	s.DeleteNode("vr:c1")
	s.EnsureNode("vr:c1", "virtual-router")

	require.Len(t, notifications, 3)
	assert.False(t, notifications[0])
	assert.True(t, notifications[1])
	assert.False(t, notifications[2])
}

func TestStore_DeleteUnknownNodeIsNoop(t *testing.T) {
	s := NewStore()
	called := false
	s.OnNodeNotify = func(n *Node) { called = true }
	s.DeleteNode("nonexistent")
	assert.False(t, called)
}

func TestStore_EnsureLinkWiresAdjacency(t *testing.T) {
	s := NewStore()
	left := s.EnsureNode("vr:c1", "virtual-router")
	right := s.EnsureNode("vm:c1", "virtual-machine")

	var linkNotified int
	s.OnLinkNotify = func(l *Link) { linkNotified++ }

	l := s.EnsureLink("vr-vm", left, right)

	assert.Equal(t, 1, linkNotified)
	assert.Equal(t, 1, s.LinkCount())
	assert.Contains(t, left.Links(), l)
	assert.Contains(t, right.Links(), l)
}

func TestStore_EnsureLinkIdempotent(t *testing.T) {
	s := NewStore()
	left := s.EnsureNode("vr:c1", "virtual-router")
	right := s.EnsureNode("vm:c1", "virtual-machine")

	l1 := s.EnsureLink("vr-vm", left, right)
	l2 := s.EnsureLink("vr-vm", left, right)

	assert.Same(t, l1, l2)
	assert.Equal(t, 1, s.LinkCount())
}

func TestStore_DeleteLinkMarksDeleted(t *testing.T) {
	s := NewStore()
	left := s.EnsureNode("vr:c1", "virtual-router")
	right := s.EnsureNode("vm:c1", "virtual-machine")
	s.EnsureLink("vr-vm", left, right)

	s.DeleteLink("vr-vm", left, right)

	l := s.links[linkKey{typ: "vr-vm", left: "vr:c1", right: "vm:c1"}]
	require.NotNil(t, l)
	assert.True(t, l.Deleted)
}

func TestStore_GetNodeMissing(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.GetNode("missing"))
}
