package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/contrail/ifmapd/config"
	"github.com/contrail/ifmapd/errors"
	"github.com/contrail/ifmapd/logger"
	"github.com/contrail/ifmapd/server"
)

// ServeCmd starts the ifmapd session-layer server.
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the ifmapd session-layer server",
	Long:    `Launch the ifmapd server: accepts router and compute-node WebSocket sessions, tracks the metadata graph, and pushes INTEREST/ADVERTISED updates to each subscriber.`,
	RunE:    runServe,
}

var serveListenAddr string

func init() {
	ServeCmd.Flags().StringVar(&serveListenAddr, "listen", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	cfg.Log.Verbosity = verbosity

	listenAddr := cfg.Listen.Address
	if serveListenAddr != "" {
		listenAddr = serveListenAddr
	}

	hub, err := server.NewHub(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Infow("starting ifmapd", "listen", listenAddr, "whitelist", cfg.WhiteList.Path, "max_clients", cfg.Clients.Max)

	errChan := make(chan error, 1)
	go func() {
		errChan <- hub.Start(listenAddr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server failed to start")
	case <-sigChan:
		logger.Info("shutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- hub.Stop()
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return fmt.Errorf("shutdown error: %w", err)
			}
			logger.Info("server stopped cleanly")
			return nil
		case <-sigChan:
			logger.Warn("force shutdown - exiting immediately")
			os.Exit(1)
			return nil
		}
	}
}
