package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"

	mandel "github.com/marben/banded_mandel"
)

// main is the entry point for the Mandelbrot preview server.
// Images are rendered in-process and served over plain http and a websocket session.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	addr := flag.String("addr", ":8080", "http listen address")
	workers := flag.Int("workers", 0, "bands per image (0 = one per CPU)")
	maxPixels := flag.Int("max-pixels", 4096*4096, "largest image a client may request")
	timeout := flag.Duration("render-timeout", 30*time.Second, "upper bound on a single render")
	gops := flag.Bool("gops", false, "start the gops diagnostics agent")
	flag.Parse()

	if *gops {
		stopAgent, err := startAgent(agent.Options{})
		if err != nil {
			return err
		}
		defer stopAgent()
	}

	svc := newRenderService(mandel.Engine{Workers: *workers}, *maxPixels, *timeout)
	httpServer := webServer(*addr, svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("httpServer: %w", err)
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// startAgent starts the gops diagnostics agent and returns the function that stops it.
func startAgent(opts agent.Options) (func(), error) {
	if err := agent.Listen(opts); err != nil {
		return nil, fmt.Errorf("gops agent: %w", err)
	}
	log.Printf("gops agent listening")
	return agent.Close, nil
}
