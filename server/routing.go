package server

import "net/http"

// setupHTTPRoutes configures the hub's HTTP surface: the WebSocket
// upgrade endpoint, the introspection dumps, and a liveness probe. None
// of these are browser-facing, so there is no CORS middleware.
func (h *Hub) setupHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/introspect/queue", h.handleIntrospectQueue)
	mux.HandleFunc("/introspect/vmreg", h.handleIntrospectVMReg)
	mux.HandleFunc("/introspect/clients", h.handleIntrospectClients)
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":          ServerState(h.state.Load()).String(),
		"clients":        h.clientCount(),
		"queue_size":     h.exporter.Queue().Size(),
	})
}
