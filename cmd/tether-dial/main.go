// Command tether-dial runs an initiator against the peers named in a
// YAML configuration file and keeps the connection alive until
// interrupted. Useful for smoke-testing peer reachability and TLS
// material, and for producing event logs for tether-log.
//
// Usage:
//
//	tether-dial -config tether.yaml [-debug]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tetherlink/tether-go/pkg/config"
	"github.com/tetherlink/tether-go/pkg/initiator"
	"github.com/tetherlink/tether-go/pkg/log"
	"github.com/tetherlink/tether-go/pkg/transport"
)

// echoHandler tracks the active connection and drains inbound frames so
// the peer's writes don't stall.
type echoHandler struct {
	logger *slog.Logger

	mu   sync.Mutex
	conn *transport.Conn
}

func (h *echoHandler) OnConnected(conn *transport.Conn) {
	h.mu.Lock()
	if h.conn != nil {
		h.conn.Close()
	}
	h.conn = conn
	h.mu.Unlock()

	h.logger.Info("connected",
		"conn_id", conn.ID(),
		"remote_addr", conn.RemoteAddr().String())

	go func() {
		for {
			msg, err := conn.Receive(0)
			if err != nil {
				// Closing marks the connection inactive so the
				// supervisor schedules a reconnect.
				conn.Close()
				h.logger.Info("connection closed", "conn_id", conn.ID(), "reason", err)
				return
			}
			h.logger.Debug("received", "conn_id", conn.ID(), "bytes", len(msg))
		}
	}()
}

func (h *echoHandler) closeActive() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn != nil {
		h.conn.Close()
		h.conn = nil
	}
}

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file (required)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*configPath, slogger); err != nil {
		slogger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(configPath string, slogger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	loggers := []log.Logger{log.NewSlogAdapter(slogger)}
	if cfg.EventLogFile != "" {
		fileLogger, err := log.NewFileLogger(cfg.EventLogFile)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		defer fileLogger.Close()
		loggers = append(loggers, fileLogger)
	}

	handler := &echoHandler{logger: slogger}
	iniCfg, err := cfg.InitiatorConfig(initiator.AlwaysOnSession{}, handler)
	if err != nil {
		return err
	}
	iniCfg.Logger = log.NewMultiLogger(loggers...)

	ini, err := initiator.New(iniCfg)
	if err != nil {
		return fmt.Errorf("create initiator: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ini.Start()
	slogger.Info("initiator started", "peers", len(cfg.Peers))

	<-ctx.Done()
	slogger.Info("shutting down")

	ini.Stop()
	handler.closeActive()
	return nil
}
