package queue

import "github.com/contrail/ifmapd/internal/bitset"

// DequeueFunc is invoked by Leave for every update/delete entry ahead of
// the leaving client's marker, so the owning component (the exporter) can
// advance its own bookkeeping; the entry has been dequeued only if its
// advertise set became empty. subset is the set of bits just removed from
// the entry's advertise set; Leave always passes isDelete true, whatever
// the entry's own kind.
type DequeueFunc func(entry *Entry, subset *bitset.BitSet, isDelete bool)

// UpdateQueue is the single shared ordered list of pending updates and
// client position markers. One tail marker is always present; Enqueue
// appends new entries after it, and the sender moves it back to the end
// once it has swept past them. UpdateQueue does not deliver anything; it
// is a pure ordered data structure operated on by the exporter and the
// sender.
type UpdateQueue struct {
	head, tail *Entry
	tailMarker *Entry
	markers    map[int]*Entry

	onLeaveDequeue DequeueFunc
}

// New returns an empty queue containing only its tail marker.
// onLeaveDequeue is called for every entry Leave drops along the way.
func New(onLeaveDequeue DequeueFunc) *UpdateQueue {
	q := &UpdateQueue{markers: make(map[int]*Entry), onLeaveDequeue: onLeaveDequeue}
	q.tailMarker = NewMarker()
	q.pushBack(q.tailMarker)
	return q
}

func (q *UpdateQueue) pushBack(e *Entry) {
	e.prev = q.tail
	e.next = nil
	if q.tail != nil {
		q.tail.next = e
	} else {
		q.head = e
	}
	q.tail = e
}

func (q *UpdateQueue) unlink(e *Entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		q.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		q.tail = e.prev
	}
	e.next, e.prev = nil, nil
}

func (q *UpdateQueue) insertBefore(e, pivot *Entry) {
	prev := pivot.prev
	e.prev = prev
	e.next = pivot
	pivot.prev = e
	if prev != nil {
		prev.next = e
	} else {
		q.head = e
	}
}

func (q *UpdateQueue) insertAfter(e, pivot *Entry) {
	next := pivot.next
	e.next = next
	e.prev = pivot
	pivot.next = e
	if next != nil {
		next.prev = e
	} else {
		q.tail = e
	}
}

// Enqueue appends update at the tail. Precondition: update.Advertise() is
// non-empty. Returns whether the tail marker was previously the last
// element — callers use this to decide whether the sender needs waking.
func (q *UpdateQueue) Enqueue(update *Entry) bool {
	tailWasLast := q.GetLast() == q.tailMarker
	q.pushBack(update)
	return tailWasLast
}

// Dequeue unlinks update from the queue in O(1).
func (q *UpdateQueue) Dequeue(update *Entry) {
	q.unlink(update)
}

// Next returns the element after current, or nil at the tail.
func (q *UpdateQueue) Next(current *Entry) *Entry { return current.next }

// Previous returns the element before current, or nil at the head.
func (q *UpdateQueue) Previous(current *Entry) *Entry { return current.prev }

// GetLast returns the last element in the queue, or nil if empty.
func (q *UpdateQueue) GetLast() *Entry { return q.tail }

// TailMarker returns the always-present marker at the tail of the queue.
func (q *UpdateQueue) TailMarker() *Entry { return q.tailMarker }

// Empty reports whether the queue holds nothing but its tail marker.
func (q *UpdateQueue) Empty() bool {
	return q.head == q.tailMarker && q.tail == q.tailMarker
}

// Size returns the total number of entries in the queue, markers included.
func (q *UpdateQueue) Size() int {
	n := 0
	for e := q.head; e != nil; e = e.next {
		n++
	}
	return n
}

// GetMarker returns the marker the given client bit is currently
// positioned at, or nil if the bit has not Joined.
func (q *UpdateQueue) GetMarker(bit int) *Entry {
	return q.markers[bit]
}

// Join adds bit to the tail marker's mask, positioning a newly registered
// client at the tail marker to receive new updates.
func (q *UpdateQueue) Join(bit int) {
	q.tailMarker.Mask().Set(uint(bit))
	q.markers[bit] = q.tailMarker
}

// Leave removes bit from every queue entry. For every update/delete from
// the client's marker forward, bit is cleared from its advertise set, an
// entry whose advertise set becomes empty is dequeued, and every such
// entry, dequeued or not, is reported via onLeaveDequeue. The client's
// marker is then dropped; it is deleted if it becomes empty, except the
// tail marker is never deleted.
func (q *UpdateQueue) Leave(bit int) {
	marker, ok := q.markers[bit]
	if !ok {
		return
	}

	var resetSet bitset.BitSet
	resetSet.Set(uint(bit))

	for iter := marker.next; iter != nil; {
		next := iter.next
		if !iter.IsMarker() {
			iter.AdvertiseReset(&resetSet)
			if iter.Advertise().Empty() {
				q.Dequeue(iter)
			}
			if q.onLeaveDequeue != nil {
				// Always reported as a delete: a leaving client drops
				// interest in everything ahead of its marker, so any
				// pending update it still carries bit for must be
				// treated as withdrawn, not applied, regardless of
				// the entry's own kind.
				q.onLeaveDequeue(iter, &resetSet, true)
			}
		}
		iter = next
	}

	delete(q.markers, bit)
	marker.Mask().Reset(uint(bit))
	if marker != q.tailMarker && marker.Mask().Empty() {
		q.unlink(marker)
	}
}

// MoveMarkerBefore relocates marker to immediately before pivot.
func (q *UpdateQueue) MoveMarkerBefore(marker, pivot *Entry) {
	q.unlink(marker)
	q.insertBefore(marker, pivot)
}

// MoveMarkerAfter relocates marker to immediately after pivot.
func (q *UpdateQueue) MoveMarkerAfter(marker, pivot *Entry) {
	q.unlink(marker)
	q.insertAfter(marker, pivot)
}

// markerSplit extracts msplit out of marker's mask into a new marker
// inserted before or after pivot, re-pointing the client->marker index for
// every bit moved. Preconditions: msplit is non-empty and a subset of
// marker's mask.
func (q *UpdateQueue) markerSplit(marker, pivot *Entry, msplit *bitset.BitSet, before bool) *Entry {
	newMarker := NewMarker()
	newMarker.SetMask(msplit)
	marker.Mask().Subtract(msplit)

	for bit := msplit.FindFirst(); bit != bitset.NPos; bit = msplit.FindNext(bit) {
		q.markers[int(bit)] = newMarker
	}

	if before {
		q.insertBefore(newMarker, pivot)
	} else {
		q.insertAfter(newMarker, pivot)
	}
	return newMarker
}

// MarkerSplitBefore splits msplit out of marker into a new marker inserted
// immediately before pivot. Returns the new marker.
func (q *UpdateQueue) MarkerSplitBefore(marker, pivot *Entry, msplit *bitset.BitSet) *Entry {
	return q.markerSplit(marker, pivot, msplit, true)
}

// MarkerSplitAfter splits msplit out of marker into a new marker inserted
// immediately after pivot. Returns the new marker.
func (q *UpdateQueue) MarkerSplitAfter(marker, pivot *Entry, msplit *bitset.BitSet) *Entry {
	return q.markerSplit(marker, pivot, msplit, false)
}

// MarkerMerge moves mmove from src's mask into dst's mask, re-pointing the
// client->marker index, and deletes src if it becomes empty and is not
// the tail marker.
func (q *UpdateQueue) MarkerMerge(dst, src *Entry, mmove *bitset.BitSet) {
	dst.Mask().OrAssign(mmove)
	for bit := mmove.FindFirst(); bit != bitset.NPos; bit = mmove.FindNext(bit) {
		q.markers[int(bit)] = dst
	}
	src.Mask().Subtract(mmove)
	if src.Mask().Empty() && src != q.tailMarker {
		q.unlink(src)
	}
}
