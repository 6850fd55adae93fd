package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keunyop/rubricheck/internal/mockmodel"
	"github.com/keunyop/rubricheck/pkg/logger"
)

// Default configuration constants.
const (
	defaultAddr       = ":1234"
	defaultWrap       = "bare"
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	var (
		addr = flag.String("addr", defaultAddr, "Listen address for the mock backend")
		wrap = flag.String("wrap", defaultWrap, "Payload wrap mode: bare, fenced or prose")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	wrapMode, err := mockmodel.ParseWrap(*wrap)
	if err != nil {
		os.Stderr.WriteString("Invalid wrap mode: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              *addr,
		Handler:           mockmodel.NewHandler(mockmodel.WithWrap(wrapMode)),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "mock model backend listening",
			logger.String("addr", *addr),
			logger.String("wrap", string(wrapMode)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "mock model backend failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "mock model backend shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "mock model backend stopped")
}
