package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lowlatency/arena/internal/config"
	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/logging"
	"github.com/lowlatency/arena/internal/session"
	"github.com/lowlatency/arena/internal/vec"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file (defaults left in place if omitted)")
	serverAddr := flag.String("server", "", "host:port of the server to join (required)")
	playerName := flag.String("name", "", "overrides the configured player name")
	debug := flag.Bool("debug", false, "use a human-readable development logger")
	flag.Parse()

	if *serverAddr == "" {
		fmt.Fprintln(os.Stderr, "arena-client: -server is required")
		os.Exit(1)
	}

	cfg := config.Configuration{PlayerName: config.DefaultPlayerName}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "arena-client: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *playerName != "" {
		cfg.PlayerName = *playerName
	}

	logger, err := logging.New(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "arena-client: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	remote, err := net.ResolveUDPAddr("udp", *serverAddr)
	if err != nil {
		logger.Error("invalid server address", zap.String("server", *serverAddr), zap.Error(err))
		os.Exit(1)
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		logger.Error("failed to open a UDP socket", zap.Error(err))
		os.Exit(1)
	}
	defer conn.Close()

	world := entity.NewWorld(entity.Rect{Min: vec.New(-50, -50), Max: vec.New(50, 50)}, 2)
	sess := session.NewSession(session.ModeClient, logger, world, nil)
	sess.Attach(conn)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting", zap.String("server", *serverAddr), zap.String("player_name", cfg.PlayerName))

	if err := sess.RunClient(ctx, remote, cfg.PlayerName); err != nil && ctx.Err() == nil {
		logger.Error("client loop exited with error", zap.Error(err))
		os.Exit(1)
	}
}
