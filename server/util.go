package server

import (
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

// newUpgrader creates a WebSocket upgrader. Origin checking is permissive:
// ifmapd connects routers and compute-node agents, not browsers, so there
// is no cross-site request forgery surface to defend against here.
func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     checkOrigin,
	}
}

func checkOrigin(r *http.Request) bool {
	return true
}

// isPortAvailable checks if a port is available for binding.
func isPortAvailable(port int) bool {
	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}

// findAvailablePort tries requestedPort first, then 10 ports above it.
func findAvailablePort(requestedPort int) (int, error) {
	if isPortAvailable(requestedPort) {
		return requestedPort, nil
	}
	for i := 1; i <= 10; i++ {
		port := requestedPort + i
		if isPortAvailable(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found in range %d-%d", requestedPort, requestedPort+10)
}
