// Package sender implements the UpdateSender: the single cooperative
// worker that walks the shared update queue from each client's marker
// forward, batches encoded updates per client, and retreats a client's
// marker (rather than advancing it) the moment that client's transport
// reports it is blocked.
package sender

import (
	"context"
	"sync"

	"github.com/contrail/ifmapd/internal/bitset"
	"github.com/contrail/ifmapd/internal/ifmap"
	"github.com/contrail/ifmapd/internal/ifmap/exporter"
	"github.com/contrail/ifmapd/internal/ifmap/graph"
	"github.com/contrail/ifmapd/internal/ifmap/queue"
)

// ClientProvider resolves a client's queue bit to its live transport, or
// nil if that client has since disconnected.
type ClientProvider func(index int) ifmap.Client

// statsClient is the optional subset of ifmap.Client implementations that
// also track per-kind delivery counters.
type statsClient interface {
	IncrUpdateNodesSent()
	IncrDeleteNodesSent()
	IncrUpdateLinksSent()
	IncrDeleteLinksSent()
}

// Sender drains the update queue on a single dedicated goroutine,
// triggered by QueueActive (new work behind the tail marker) or
// SendActive (a previously blocked client became ready again).
type Sender struct {
	queue    *queue.UpdateQueue
	exporter *exporter.Exporter
	clientOf ClientProvider
	message  *ifmap.Message

	mu            sync.Mutex
	taskScheduled bool
	queueActive   bool
	sendScheduled bitset.BitSet
	sendBlocked   bitset.BitSet

	wake   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Sender draining q on behalf of clients resolved through
// clientOf, reporting delivery progress back to exp. It wires itself as
// exp's QueueActive callback.
func New(q *queue.UpdateQueue, exp *exporter.Exporter, clientOf ClientProvider) *Sender {
	s := &Sender{
		queue:    q,
		exporter: exp,
		clientOf: clientOf,
		message:  ifmap.NewMessage(),
		wake:     make(chan struct{}, 1),
	}
	exp.QueueActive = s.QueueActive
	return s
}

func (s *Sender) SetObjectsPerMessage(n int) { s.message.SetObjectsPerMessage(n) }

func (s *Sender) IsClientBlocked(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendBlocked.Test(uint(index))
}

// Start launches the worker goroutine. Safe to call once.
func (s *Sender) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop cancels the worker and waits for it to drain.
func (s *Sender) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Sender) run(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			s.runOnce()
		}
	}
}

// scheduleTask must be called with s.mu held. It wakes the worker at most
// once per outstanding request, matching task_scheduled_'s debounce.
func (s *Sender) scheduleTask() {
	if s.taskScheduled {
		return
	}
	s.taskScheduled = true
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// QueueActive is posted when the update queue has elements behind the
// tail marker to transmit.
func (s *Sender) QueueActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queueActive {
		return
	}
	s.queueActive = true
	s.scheduleTask()
}

// SendActive is posted when client index's transport is ready to accept
// more data after previously blocking.
func (s *Sender) SendActive(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendScheduled.Set(uint(index))
	s.scheduleTask()
}

// CleanupClient clears a disconnecting client's scheduling/blocked state.
func (s *Sender) CleanupClient(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendScheduled.Reset(uint(index))
	s.sendBlocked.Reset(uint(index))
}

func (s *Sender) getSendScheduled() *bitset.BitSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.sendScheduled.Clone()
	s.sendScheduled = bitset.BitSet{}
	s.taskScheduled = false
	return current
}

// runOnce is one pass of the worker: send from every client marker that
// became ready since the last pass, then from the tail marker if new
// work arrived. A fresh QueueActive/SendActive call during this pass
// schedules another wake rather than being missed.
func (s *Sender) runOnce() {
	scheduled := s.getSendScheduled()

	s.mu.Lock()
	s.sendBlocked.Subtract(scheduled)
	s.mu.Unlock()

	for bit := scheduled.FindFirst(); bit != bitset.NPos; bit = scheduled.FindNext(bit) {
		marker := s.queue.GetMarker(int(bit))
		if marker == nil {
			continue
		}
		s.send(marker)
	}

	s.mu.Lock()
	active := s.queueActive
	s.mu.Unlock()
	if active {
		s.send(s.queue.TailMarker())
		s.mu.Lock()
		s.queueActive = false
		s.mu.Unlock()
	}
}

// send walks the queue from marker forward until either every client in
// marker's mask is blocked, or the end of the queue is reached. Only the
// worker goroutine ever calls this, so the queue's list structure needs
// no locking here; sendBlocked is shared with SendActive/IsClientBlocked
// callers and stays behind s.mu.
func (s *Sender) send(imarker *queue.Entry) {
	marker := imarker

	s.mu.Lock()
	var blockedClients bitset.BitSet
	blockedClients.BuildIntersection(marker.Mask(), &s.sendBlocked)
	s.mu.Unlock()

	if blockedClients.Equal(marker.Mask()) {
		return
	}

	if blockedClients.Any() {
		s.queue.MarkerSplitBefore(marker, marker, &blockedClients)
	}

	next := s.queue.Next(marker)
	var baseSendSet bitset.BitSet

	for curr := next; curr != nil; curr = next {
		next = s.queue.Next(curr)

		if curr.IsMarker() {
			if !s.message.IsEmpty() {
				s.sendUpdate(&baseSendSet)
			}
			var done bool
			marker = s.processMarker(marker, curr, &done)
			if done {
				return
			}
			baseSendSet = bitset.BitSet{}
			continue
		}

		update := curr
		var sendSet bitset.BitSet
		sendSet.BuildIntersection(update.Advertise(), marker.Mask())
		if sendSet.Empty() {
			continue
		}

		if baseSendSet.Empty() {
			baseSendSet = *sendSet.Clone()
		}

		if s.message.IsFull() || (!baseSendSet.Equal(&sendSet) && !s.message.IsEmpty()) {
			blockedSet := s.sendUpdate(&baseSendSet)
			if blockedSet.Any() {
				if blockedSet.Equal(marker.Mask()) {
					s.queue.MoveMarkerBefore(marker, curr)
					return
				}
				s.queue.MarkerSplitBefore(marker, curr, blockedSet)
				sendSet.Subtract(blockedSet)
			}
			baseSendSet = *sendSet.Clone()
		}

		s.processUpdate(update, &baseSendSet)
	}

	if !s.message.IsEmpty() {
		s.sendUpdate(&baseSendSet)
	}

	last := s.queue.GetLast()
	if marker != last {
		s.queue.MoveMarkerAfter(marker, last)
	}
}

// processMarker merges marker into nextMarker, splitting back out any
// clients that are blocked so the ready subset can keep traversing.
// done reports whether every client across both markers is blocked.
func (s *Sender) processMarker(marker, nextMarker *queue.Entry, done *bool) *queue.Entry {
	var totalSet bitset.BitSet
	totalSet.OrAssign(marker.Mask())
	totalSet.OrAssign(nextMarker.Mask())

	s.mu.Lock()
	var blockedSet bitset.BitSet
	blockedSet.BuildIntersection(&totalSet, &s.sendBlocked)
	s.mu.Unlock()

	var readySet bitset.BitSet
	readySet.BuildComplement(&totalSet, &blockedSet)

	s.queue.MarkerMerge(nextMarker, marker, marker.Mask())
	if !blockedSet.Empty() && !readySet.Empty() {
		s.queue.MarkerSplitBefore(nextMarker, nextMarker, &blockedSet)
	}

	*done = readySet.Empty()
	return nextMarker
}

// sendUpdate transmits the accumulated message to every client in
// sendSet, returning the subset whose transport reported back-pressure.
func (s *Sender) sendUpdate(sendSet *bitset.BitSet) *bitset.BitSet {
	blocked := &bitset.BitSet{}

	for bit := sendSet.FindFirst(); bit != bitset.NPos; bit = sendSet.FindNext(bit) {
		idx := int(bit)
		client := s.clientOf(idx)
		if client == nil {
			continue
		}

		s.message.SetReceiverInMsg(client.Identifier())
		s.message.Close()

		if !client.SendUpdate(s.message.String()) {
			blocked.Set(uint(idx))
			s.mu.Lock()
			s.sendBlocked.Set(uint(idx))
			s.mu.Unlock()
		}
	}
	s.message.Reset()
	return blocked
}

// processUpdate folds update into the outgoing batch, retires it from
// the queue once fully drained, and reports the delivered subset back to
// the exporter.
func (s *Sender) processUpdate(update *queue.Entry, baseSendSet *bitset.BitSet) {
	s.logSentUpdate(update, baseSendSet)
	s.message.EncodeUpdate(update)

	update.AdvertiseReset(baseSendSet)
	if update.Advertise().Empty() {
		s.queue.Dequeue(update)
	}
	s.exporter.RecordProgress(update, baseSendSet)
}

func (s *Sender) logSentUpdate(update *queue.Entry, baseSendSet *bitset.BitSet) {
	if baseSendSet.Empty() {
		return
	}
	_, isLink := update.State.(*graph.LinkState)
	isUpdate := update.IsUpdate()

	for bit := baseSendSet.FindFirst(); bit != bitset.NPos; bit = baseSendSet.FindNext(bit) {
		client := s.clientOf(int(bit))
		sc, ok := client.(statsClient)
		if !ok {
			continue
		}
		switch {
		case isLink && isUpdate:
			sc.IncrUpdateLinksSent()
		case isLink && !isUpdate:
			sc.IncrDeleteLinksSent()
		case !isLink && isUpdate:
			sc.IncrUpdateNodesSent()
		default:
			sc.IncrDeleteNodesSent()
		}
	}
}
