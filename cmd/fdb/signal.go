package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// setupSignalContext returns a context cancelled when a shutdown signal is
// received. The returned stop function releases the signal handler.
func setupSignalContext(parent context.Context, stderr io.Writer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	// SIGINT (Ctrl+C) and SIGTERM (termination)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			fmt.Fprintf(stderr, "\nReceived signal: %v\n", sig)
			fmt.Fprintf(stderr, "Initiating graceful shutdown...\n")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
