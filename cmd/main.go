package main

import (
	"conquest/infrastructure/ws"
	"conquest/internal"
	"conquest/moderation"
	"conquest/runtime"
	"conquest/runtime/workers"
	"conquest/services"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the transport and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Chat moderation (optional)
	var moderator *moderation.Moderator
	if config.ModerationWords != "" {
		replacement, err := CharacterRune(config.ModerationCharReplacement)
		if err != nil {
			return err
		}
		words := strings.Split(config.ModerationWords, ",")
		moderator, err = moderation.NewModerator(words, replacement)
		if err != nil {
			return fmt.Errorf("moderation setup failed: %w", err)
		}
		log.Info("Chat moderation enabled", "words", len(words))
	}

	// 3. Core state & orchestration
	sup := workers.NewSupervisor(log)
	sessions := runtime.NewSessionDirectory(log)
	rooms := runtime.NewRoomRegistry(log)
	buffer := runtime.NewBidBuffer()
	notifier := runtime.NewNotifier(log, sessions, rooms, config.SinkTimeout)

	orchestrator := runtime.NewOrchestrator(
		log, sup, sessions, rooms, buffer, notifier, moderator,
		config.TickInterval, config.LeftTurn, config.TelemetryInterval,
	)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start the engine and the operator endpoints
	if err := orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}
	internal.StartDebugServer(log, config.DebugPort,
		orchestrator.RoomSnapshots, orchestrator.Stats, orchestrator.RemoveRoom)

	// 6. Websocket transport
	wsServer := ws.NewServer(log,
		services.NewGameService(orchestrator),
		config.ConnectionBufferSize, config.WriteTimeout)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsServer)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: mux}

	// Use an error channel to capture ListenAndServe issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("websocket server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
