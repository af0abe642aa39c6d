package server

import (
	"net/http"

	"github.com/contrail/ifmapd/internal/ifmap/graph"
	"github.com/contrail/ifmapd/internal/ifmap/queue"
)

// queueEntryView is one row of the queue contents dump.
type queueEntryView struct {
	Kind   string `json:"kind"`
	Entity string `json:"entity"`
}

// handleIntrospectQueue dumps the shared update queue in list order: its
// size, and each entry's kind and owning entity name. Marker entries
// report an empty entity name.
func (h *Hub) handleIntrospectQueue(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	q := h.exporter.Queue()
	entries := make([]queueEntryView, 0, q.Size())
	for e := q.GetLast(); e != nil; e = q.Previous(e) {
		entries = append(entries, queueEntryView{
			Kind:   e.Kind.String(),
			Entity: entityName(e),
		})
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"size":    q.Size(),
		"entries": entries,
	})
}

func entityName(e *queue.Entry) string {
	if e.State == nil {
		return ""
	}
	switch st := e.State.(type) {
	case *graph.NodeState:
		return st.Node().Name
	case *graph.LinkState:
		l := st.Link()
		return string(l.Type) + ":" + l.Left.Name + "-" + l.Right.Name
	default:
		return ""
	}
}

// handleIntrospectVMReg dumps vmreg's registration counters: how many
// UUIDs currently resolve to a node, and how many subscriptions remain
// pending a node coming feasible.
func (h *Hub) handleIntrospectVMReg(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uuid_mapped_count": h.vmap.UuidMapperCount(),
		"node_mapped_count": h.vmap.NodeUuidMapCount(),
		"pending_count":     h.vmap.PendingVmRegCount(),
	})
}

// clientView is one row of the per-client introspection dump.
type clientView struct {
	Bit               int    `json:"bit"`
	Identifier        string `json:"identifier"`
	MsgsSent          uint64 `json:"msgs_sent"`
	MsgsBlocked       uint64 `json:"msgs_blocked"`
	InterestTracked   int    `json:"interest_tracked"`
	AdvertisedTracked int    `json:"advertised_tracked"`
	Blocked           bool   `json:"blocked"`
}

// handleIntrospectClients dumps every registered client's bitset index,
// delivery counters, and INTEREST/ADVERTISED tracker sizes.
func (h *Hub) handleIntrospectClients(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	h.mu.RLock()
	views := make([]clientView, 0, len(h.clients))
	for bit, c := range h.clients {
		interest, advertised := h.exporter.TrackerSizes(bit)
		views = append(views, clientView{
			Bit:               bit,
			Identifier:        c.Identifier(),
			MsgsSent:          c.MsgsSent(),
			MsgsBlocked:       c.MsgsBlocked(),
			InterestTracked:   interest,
			AdvertisedTracked: advertised,
			Blocked:           h.sender.IsClientBlocked(bit),
		})
	}
	h.mu.RUnlock()

	writeJSON(w, http.StatusOK, views)
}
