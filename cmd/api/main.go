package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"

	"github.com/BurkushTetiana/itmarathon/infrastructure/http/server"
	"github.com/BurkushTetiana/itmarathon/internal"
	"github.com/BurkushTetiana/itmarathon/repositories"
	"github.com/BurkushTetiana/itmarathon/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// main is a thin wrapper: run() owns the lifecycle so that deferred
	// cleanups (Badger close in particular) execute before the process exits.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "API terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & logger
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	options := badger.DefaultOptions(config.BadgerFilepath).WithLogger(nil)
	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Releases the directory lock and flushes buffers on the way out.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	debug := logger.Enabled(ctx, slog.LevelDebug)
	if debug && config.DebugPort > 0 {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		internal.StartDebugServer(db, config.DebugPort, endpoint, roomMapper)
	}

	// 3. Wiring
	roomRepository := repositories.NewRoomRepository(db, logger)
	roomService := services.NewRoomService(roomRepository, logger)
	roomServer := server.NewRoomServer(logger, roomService)
	router := server.SetupRouter(logger, debug, roomServer)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: router,
	}

	// 4. Serve until a signal or a listener failure
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("API listening", "addr", srv.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitRuntime, fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	// 5. Graceful shutdown: in-flight removals get to finish
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("shutdown error: %w", err)
	}

	return exitOK, nil
}

// roomMapper renders store entries for the inspector.
func roomMapper(key string, val []byte) internal.InspectRow {
	kind := "room"
	if strings.HasPrefix(key, "user:") {
		kind = "user-index"
	}
	return internal.InspectRow{
		Key:    key,
		Type:   kind,
		Detail: repositories.DescribeValue(key, val),
	}
}
