package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lowlatency/arena/internal/config"
	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/logging"
	"github.com/lowlatency/arena/internal/metrics"
	"github.com/lowlatency/arena/internal/netproto"
	"github.com/lowlatency/arena/internal/session"
	"github.com/lowlatency/arena/internal/vec"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file (defaults left in place if omitted)")
	port := flag.Int("port", config.DefaultServerPort, "UDP port to listen on")
	serverName := flag.String("name", "Arena Server", "name advertised over LAN discovery")
	metricsAddr := flag.String("metrics-addr", "127.0.0.1:9090", "address to serve Prometheus metrics on")
	discoveryOff := flag.Bool("no-discovery", false, "disable LAN discovery broadcast")
	debug := flag.Bool("debug", false, "use a human-readable development logger")
	flag.Parse()

	cfg := config.Configuration{ServerPort: uint16(*port), ServerName: *serverName}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "arena-server: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger, err := logging.New(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "arena-server: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	instanceID := uuid.New()
	logger = logger.With(zap.String("instance", instanceID.String()))

	reg := metrics.NewRegistry()
	go serveMetrics(*metricsAddr, reg, logger)

	world := entity.NewWorld(entity.Rect{Min: vec.New(-50, -50), Max: vec.New(50, 50)}, 2)
	spawnPoints := []vec.Vec2{
		vec.New(-20, -20), vec.New(20, -20),
		vec.New(-20, 20), vec.New(20, 20),
	}

	sess := session.NewSession(session.ModeServer, logger, world, spawnPoints)

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: *port})
	if err != nil {
		logger.Error("failed to bind UDP listener", zap.Int("port", *port), zap.Error(err))
		os.Exit(1)
	}
	defer conn.Close()
	sess.Attach(conn)
	sess.AttachMetrics(reg)

	var discovery *netproto.DiscoveryBroadcaster
	if !*discoveryOff {
		discovery, err = netproto.NewDiscoveryBroadcaster(1)
		if err != nil {
			logger.Warn("discovery broadcaster unavailable, continuing without LAN discovery", zap.Error(err))
		} else {
			defer discovery.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("server listening",
		zap.Int("port", *port),
		zap.String("server_name", cfg.ServerName),
		zap.Bool("discovery", discovery != nil))

	if err := sess.RunServer(ctx, discovery, cfg.ServerName, uint16(*port)); err != nil && ctx.Err() == nil {
		logger.Error("server loop exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func serveMetrics(addr string, reg *metrics.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics endpoint stopped", zap.Error(err))
	}
}
