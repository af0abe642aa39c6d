// Package queue implements the single shared ordered update queue: a
// doubly-linked list of update/delete entries interleaved with per-client
// position markers. It is a pure ordered data structure — it never
// delivers anything itself, and it is the only place markers are
// allocated.
package queue

import "github.com/contrail/ifmapd/internal/bitset"

// Kind tags what an Entry represents: a pending add/change, a pending
// delete, or a client position bookmark. Markers and updates share one
// list, distinguished by this tag rather than by inheritance.
type Kind int

const (
	KindUpdate Kind = iota
	KindDelete
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindUpdate:
		return "Update"
	case KindDelete:
		return "Delete"
	case KindMarker:
		return "Marker"
	default:
		return "Unknown"
	}
}

// Entry is one element of the UpdateQueue's list: either an update/delete
// record for a graph entity, or a marker bookmarking client positions.
type Entry struct {
	Kind Kind

	next, prev *Entry

	// State is the owning NodeState/LinkState for Update/Delete entries,
	// opaque to this package. Nil for markers.
	State interface{}

	// bits is the advertise set for Update/Delete entries, or the mask
	// for Marker entries — the two never coexist on one Entry.
	bits bitset.BitSet
}

// NewUpdate returns an Update or Delete entry for the given owning state.
func NewUpdate(state interface{}, isDelete bool) *Entry {
	k := KindUpdate
	if isDelete {
		k = KindDelete
	}
	return &Entry{Kind: k, State: state}
}

// NewMarker returns a fresh, empty marker not yet linked into any queue.
func NewMarker() *Entry {
	return &Entry{Kind: KindMarker}
}

func (e *Entry) IsMarker() bool { return e.Kind == KindMarker }
func (e *Entry) IsUpdate() bool { return e.Kind == KindUpdate }
func (e *Entry) IsDelete() bool { return e.Kind == KindDelete }

func (e *Entry) Next() *Entry     { return e.next }
func (e *Entry) Previous() *Entry { return e.prev }

// Advertise returns the set of clients this update/delete still needs to
// reach. Mutating the returned bitset mutates the entry.
func (e *Entry) Advertise() *bitset.BitSet { return &e.bits }

// SetAdvertise replaces the advertise set wholesale.
func (e *Entry) SetAdvertise(b *bitset.BitSet) { e.bits = *b.Clone() }

// AdvertiseOr ORs bits into the advertise set.
func (e *Entry) AdvertiseOr(b *bitset.BitSet) { e.bits.OrAssign(b) }

// AdvertiseReset clears bits from the advertise set.
func (e *Entry) AdvertiseReset(b *bitset.BitSet) { e.bits.Subtract(b) }

// Mask returns the marker's client-position bitset. Only meaningful when
// Kind == KindMarker.
func (e *Entry) Mask() *bitset.BitSet { return &e.bits }

// SetMask replaces the marker's mask wholesale.
func (e *Entry) SetMask(b *bitset.BitSet) { e.bits = *b.Clone() }

func (e *Entry) String() string { return e.Kind.String() }
