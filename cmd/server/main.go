package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pyfast/backend/src/app"

	"github.com/joho/godotenv"
)

const (
	AppName    = "PyFast Backend"
	AppVersion = "0.1.0"
	AppBuild   = "dev"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	// Setup app configuration
	cfg := app.NewAppConfig()

	// Create root logger
	rootLogger := app.InitLogger(*cfg.LogLevel, AppName)

	// Create root context
	rootCtx, rootCancel := context.WithCancel(context.Background())
	rootCtx = rootLogger.WithContext(rootCtx)

	rootLogger.Info().
		Str("version", AppVersion).
		Str("build", AppBuild).
		Msgf("Launching %s", AppName)

	// Create application
	application := app.NewApplication(rootCtx, *cfg)
	if application == nil {
		rootLogger.Fatal().Msg("Failed to create application")
	}

	wg := sync.WaitGroup{}
	wg.Add(1)
	go application.RunHTTPServer(rootCtx, &wg)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	sig := <-sigChan
	rootLogger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Cancel root context to stop the HTTP server
	rootCancel()

	// Wait for the server to drain with timeout
	waitChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitChan)
	}()

	select {
	case <-waitChan:
		rootLogger.Info().Msg("HTTP server shut down gracefully")
	case <-time.After(15 * time.Second):
		rootLogger.Error().Msg("Timeout waiting for HTTP server to shut down")
	}

	application.Shutdown(rootCtx)

	rootLogger.Info().Msg("Application shutdown complete")
}
