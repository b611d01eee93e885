// Package main is the entry point of the game server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xin0nix/road-n-roll/internal/config"
	"github.com/xin0nix/road-n-roll/internal/database"
	"github.com/xin0nix/road-n-roll/internal/gamestore"
	"github.com/xin0nix/road-n-roll/internal/logging"
	"github.com/xin0nix/road-n-roll/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	host := flag.String("host", "127.0.0.1", "Server host address")
	port := flag.Int("port", 8080, "Server port number")
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Server.Host = *host
		case "port":
			cfg.Server.Port = *port
		}
	})

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return 1
	}
	defer db.Close()

	srv := server.New(log, cfg.Server.IdleTimeout)

	games := gamestore.New(db, log)
	if err := games.AttachTo(srv); err != nil {
		log.Error("failed to register routes", zap.Error(err))
		return 1
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		log.Error("server failed", zap.Error(err))
		return 1

	case <-ctx.Done():
		log.Info("termination signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
			return 1
		}
	}

	log.Info("stopped")
	return 0
}
