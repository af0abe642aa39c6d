package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/contrail/ifmapd/errors"
	"github.com/contrail/ifmapd/logger"
)

func (h *Hub) setState(s ServerState) {
	h.state.Store(int32(s))
	logger.Logger.Infow("server state changed", "state", s.String())
}

// resolveListenAddr substitutes addr's port with the nearest available one
// if the configured port is already taken, following the same bind-or-
// fallback behavior as the teacher's graph server bootstrap.
func resolveListenAddr(addr string) (string, error) {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return addr, nil
	}
	port, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return addr, nil
	}
	actual, err := findAvailablePort(port)
	if err != nil {
		return "", err
	}
	if actual != port {
		logger.Logger.Infow("port in use, using alternative", "requested_port", port, "actual_port", actual)
	}
	return addr[:idx+1] + strconv.Itoa(actual), nil
}

// Start launches the hub's event loop and binds its HTTP listener. It
// blocks until the listener returns (normally only on shutdown or a
// fatal bind error).
func (h *Hub) Start(addr string) error {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.Run()
	}()

	addr, err := resolveListenAddr(addr)
	if err != nil {
		return errors.Wrap(err, "failed to find available port")
	}

	mux := http.NewServeMux()
	h.setupHTTPRoutes(mux)
	h.httpServer = &http.Server{Addr: addr, Handler: mux}

	logger.Logger.Infow("ifmapd listening", "address", addr)

	err = h.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return errors.Wrap(err, "http server failed")
}

// Stop gracefully shuts down the hub: it stops the sender, closes every
// client connection so their read/write pumps exit cleanly, cancels the
// hub's context, and waits up to ShutdownTimeout for every goroutine to
// finish before forcing a return.
func (h *Hub) Stop() error {
	logger.Logger.Infow("initiating shutdown")
	h.setState(ServerStateDraining)

	if h.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := h.httpServer.Shutdown(ctx); err != nil {
			logger.Logger.Warnw("http server shutdown error", "error", err.Error())
		}
	}

	h.sender.Stop()

	h.mu.Lock()
	toClose := make([]*WSClient, 0, len(h.clients))
	for _, c := range h.clients {
		toClose = append(toClose, c)
	}
	h.clients = make(map[int]*WSClient)
	h.mu.Unlock()

	for _, c := range toClose {
		c.conn.Close()
	}

	h.cancel()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Logger.Infow("all goroutines stopped cleanly")
	case <-time.After(ShutdownTimeout):
		logger.Logger.Warnw("goroutine shutdown timed out, forcing exit", "timeout", ShutdownTimeout.String())
	}

	h.setState(ServerStateStopped)
	logger.Logger.Infow("shutdown complete")
	return nil
}

