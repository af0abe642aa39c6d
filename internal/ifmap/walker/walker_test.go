package walker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contrail/ifmapd/internal/bitset"
	"github.com/contrail/ifmapd/internal/ifmap/graph"
)

func newFixture() (*graph.WhiteList, map[*graph.Node]*graph.NodeState) {
	wl := graph.NewWhiteList()
	wl.Allow("virtual-router", "vr-vm", "virtual-machine")
	wl.Allow("virtual-machine", "vr-vm", "virtual-router")
	wl.Allow("virtual-machine", "vm-vmi", "vmi")
	wl.Allow("vmi", "vm-vmi", "virtual-machine")
	wl.Allow("vmi", "vmi-vn", "virtual-network")
	wl.Allow("virtual-network", "vmi-vn", "vmi")
	return wl, make(map[*graph.Node]*graph.NodeState)
}

func stateFor(states map[*graph.Node]*graph.NodeState, n *graph.Node) *graph.NodeState {
	if ns, ok := states[n]; ok {
		return ns
	}
	ns := graph.NewNodeState(n)
	states[n] = ns
	return ns
}

func maskOf(bits ...uint) *bitset.BitSet {
	var b bitset.BitSet
	for _, bit := range bits {
		b.Set(bit)
	}
	return &b
}

func TestLinkAddPropagatesInterestAcrossWhitelistedChain(t *testing.T) {
	wl, states := newFixture()

	vr := &graph.Node{Name: "vr:c1", Type: "virtual-router"}
	vm := &graph.Node{Name: "vm:c1", Type: "virtual-machine"}
	vmi := &graph.Node{Name: "vmi:c1", Type: "vmi"}
	vn := &graph.Node{Name: "vn:blue", Type: "virtual-network"}

	link1 := &graph.Link{Type: "vm-vmi", Left: vm, Right: vmi}
	vm.AddLink(link1)
	vmi.AddLink(link1)
	link2 := &graph.Link{Type: "vmi-vn", Left: vmi, Right: vn}
	vmi.AddLink(link2)
	vn.AddLink(link2)

	var notified []*graph.Node
	var mu sync.Mutex
	w := New(wl, func(n *graph.Node) *graph.NodeState { return stateFor(states, n) }, func(n *graph.Node, ns *graph.NodeState) {
		mu.Lock()
		notified = append(notified, n)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	defer func() { cancel(); w.Stop() }()

	vrState := stateFor(states, vr)
	vrState.SetInterest(maskOf(0))
	vmState := stateFor(states, vm)

	vrLink := &graph.Link{Type: "vr-vm", Left: vr, Right: vm}
	vr.AddLink(vrLink)
	vm.AddLink(vrLink)

	w.LinkAdd(vr, vm, vrState, vmState)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return stateFor(states, vn).Interest().Test(0)
	}, time.Second, 5*time.Millisecond, "interest should propagate vr -> vm -> vmi -> vn")
}

func TestFilterNeighborDelegatesToWhitelist(t *testing.T) {
	wl, states := newFixture()
	w := New(wl, func(n *graph.Node) *graph.NodeState { return stateFor(states, n) }, nil)

	vr := &graph.Node{Name: "vr:c1", Type: "virtual-router"}
	vm := &graph.Node{Name: "vm:c1", Type: "virtual-machine"}
	link := &graph.Link{Type: "vr-vm", Left: vr, Right: vm}

	assert.True(t, w.FilterNeighbor(vr, link))

	other := &graph.Node{Name: "vn:blue", Type: "virtual-network"}
	unrelated := &graph.Link{Type: "vr-vm", Left: vr, Right: other}
	assert.False(t, w.FilterNeighbor(vr, unrelated))
}
