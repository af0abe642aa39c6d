// Package ifmaperr classifies the error taxonomy of the graph distribution
// core: which conditions are fatal bugs, which are recoverable locally,
// and which are silently counted and exposed through introspection only.
package ifmaperr

// Category is the top-level classification of an error raised by the core.
type Category string

const (
	// InvariantViolation is an internal precondition failure — e.g. a
	// dequeue of an entry not present in the queue. Fatal: it indicates a
	// bug in this core and halts the process.
	InvariantViolation Category = "invariant_violation"

	// ClientWriteFailure is the session layer returning false from
	// send_update. Recovered locally: the client is marked blocked and
	// its marker is left behind.
	ClientWriteFailure Category = "client_write_failure"

	// ClientAbsent is a vm_subscribe arriving for an unknown or gone
	// client. Dropped silently; counted.
	ClientAbsent Category = "client_absent"

	// DeferredEntity is a vm_subscribe referencing a VM node not yet in
	// the graph. Stored in a pending list keyed by uuid, drained when the
	// node appears.
	DeferredEntity Category = "deferred_entity"

	// StaleListener is a notification arriving for an entity whose state
	// slot holds nothing. Treated as first-seen if feasible, ignored if
	// deleted.
	StaleListener Category = "stale_listener"
)

func (c Category) String() string { return string(c) }

// Fatal reports whether errors of this category must halt the process
// rather than be counted and exposed via introspection.
func (c Category) Fatal() bool { return c == InvariantViolation }
