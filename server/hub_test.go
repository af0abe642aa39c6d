package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contrail/ifmapd/config"
)

func newTestHub(t *testing.T, maxClients int) *Hub {
	t.Helper()
	dir := t.TempDir()
	wlPath := filepath.Join(dir, "whitelist.toml")
	require.NoError(t, os.WriteFile(wlPath, []byte(`
[[rules]]
left = "virtual-router"
via = "vr-vm"
right = "virtual-machine"

[[rules]]
left = "virtual-machine"
via = "vr-vm"
right = "virtual-router"
`), 0o644))

	cfg := &config.Config{
		Clients:   config.ClientsConfig{Max: maxClients},
		Message:   config.MessageConfig{ObjectsPerMessage: 8},
		WhiteList: config.WhiteListConfig{Path: wlPath},
	}

	h, err := NewHub(cfg)
	require.NoError(t, err)
	return h
}

func TestNewHub_LoadsWhiteList(t *testing.T) {
	h := newTestHub(t, 4)
	assert.NotNil(t, h.store)
	assert.NotNil(t, h.exporter)
	assert.NotNil(t, h.sender)
}

func TestNewHub_BadWhiteListPath(t *testing.T) {
	cfg := &config.Config{
		Clients:   config.ClientsConfig{Max: 4},
		WhiteList: config.WhiteListConfig{Path: "/nonexistent/whitelist.toml"},
	}
	_, err := NewHub(cfg)
	assert.Error(t, err)
}

func TestHub_RegisterAssignsDistinctBits(t *testing.T) {
	h := newTestHub(t, 4)

	c1 := newWSClient(h, nil, "vr-1")
	c2 := newWSClient(h, nil, "vr-2")
	h.store.EnsureNode("vr-1", "virtual-router")
	h.store.EnsureNode("vr-2", "virtual-router")

	h.handleRegister(c1)
	h.handleRegister(c2)

	assert.NotEqual(t, c1.bit, c2.bit)
	assert.Equal(t, 2, h.clientCount())
}

func TestHub_RegisterRejectsOverLimit(t *testing.T) {
	h := newTestHub(t, 1)

	c1 := newWSClient(h, nil, "vr-1")
	c2 := newWSClient(h, nil, "vr-2")
	h.store.EnsureNode("vr-1", "virtual-router")
	h.store.EnsureNode("vr-2", "virtual-router")

	h.handleRegister(c1)
	h.handleRegister(c2)

	assert.Equal(t, 1, h.clientCount())
}

func TestHub_UnregisterFreesIndex(t *testing.T) {
	h := newTestHub(t, 4)

	c1 := newWSClient(h, nil, "vr-1")
	h.store.EnsureNode("vr-1", "virtual-router")
	h.handleRegister(c1)
	require.Equal(t, 1, h.clientCount())

	h.handleUnregister(c1)
	assert.Equal(t, 0, h.clientCount())

	c2 := newWSClient(h, nil, "vr-2")
	h.store.EnsureNode("vr-2", "virtual-router")
	h.handleRegister(c2)
	require.Equal(t, 1, h.clientCount())
	assert.Contains(t, h.clients, c2.bit)
}

func TestHub_VMSubscribeResolvesImmediately(t *testing.T) {
	h := newTestHub(t, 4)
	h.store.EnsureNode("vm:uuid-1", "virtual-machine")
	h.vmap.VmNodeProcess("vm:uuid-1", "uuid-1", true)

	h.handleVMSubscribe(nil, VMSubscribeMessage{VrName: "vr-1", VmUUID: "uuid-1", Subscribe: true})

	name, ok := h.vmap.GetVmNodeByUUID("uuid-1")
	assert.True(t, ok)
	assert.Equal(t, "vm:uuid-1", name)
}

func TestHub_VMSubscribePendingBeforeNodeExists(t *testing.T) {
	h := newTestHub(t, 4)

	h.handleVMSubscribe(nil, VMSubscribeMessage{VrName: "vr-1", VmUUID: "uuid-2", Subscribe: true})
	assert.Equal(t, 1, h.vmap.PendingVmRegCount())
}
