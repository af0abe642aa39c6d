package sender

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contrail/ifmapd/internal/ifmap"
	"github.com/contrail/ifmapd/internal/ifmap/exporter"
	"github.com/contrail/ifmapd/internal/ifmap/graph"
)

type fakeClient struct {
	ClientStatsStub
	mu       sync.Mutex
	id       string
	received []string
	blocked  bool
}

// ClientStatsStub satisfies the sender's optional statsClient interface
// with no-op counters, so fakeClient need not duplicate that bookkeeping.
type ClientStatsStub struct{}

func (ClientStatsStub) IncrUpdateNodesSent() {}
func (ClientStatsStub) IncrDeleteNodesSent() {}
func (ClientStatsStub) IncrUpdateLinksSent() {}
func (ClientStatsStub) IncrDeleteLinksSent() {}

func (c *fakeClient) Identifier() string { return c.id }
func (c *fakeClient) Name() string       { return c.id }
func (c *fakeClient) SendUpdate(msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.blocked {
		return false
	}
	c.received = append(c.received, msg)
	return true
}

func (c *fakeClient) messageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.received)
}

var _ ifmap.Client = (*fakeClient)(nil)

func TestSenderDeliversAnchorUpdateToRegisteredClient(t *testing.T) {
	wl := graph.NewWhiteList()
	exp := exporter.New(wl)

	client := &fakeClient{id: "router-1"}
	s := New(exp.Queue(), exp, func(index int) ifmap.Client {
		if index == 0 {
			return client
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	defer func() { cancel(); s.Stop() }()

	anchor := &graph.Node{Name: "vr:router-1", Type: "virtual-router"}
	exp.ClientRegister(0, anchor)

	require.Eventually(t, func() bool {
		return client.messageCount() > 0
	}, time.Second, 5*time.Millisecond, "the anchor node's update should reach the registered client")
}

func TestIsClientBlockedReflectsSendFailures(t *testing.T) {
	wl := graph.NewWhiteList()
	exp := exporter.New(wl)

	client := &fakeClient{id: "router-1", blocked: true}
	s := New(exp.Queue(), exp, func(index int) ifmap.Client { return client })

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	defer func() { cancel(); s.Stop() }()

	anchor := &graph.Node{Name: "vr:router-1", Type: "virtual-router"}
	exp.ClientRegister(0, anchor)

	require.Eventually(t, func() bool {
		return s.IsClientBlocked(0)
	}, time.Second, 5*time.Millisecond, "a client whose transport rejects the send should be marked blocked")
	assert.Equal(t, 0, client.messageCount())
}
