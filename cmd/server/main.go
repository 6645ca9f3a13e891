package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SeqSearch/internal/config"
	"SeqSearch/internal/corpus"
	"SeqSearch/internal/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seqsearch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting SeqSearch",
		"version", Version,
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"watch", cfg.Watch,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := corpus.New(nil, corpus.Config{
		SearchConcurrency: cfg.SearchConcurrency,
		SearchTimeout:     cfg.SearchTimeout,
		MaxDocumentBytes:  cfg.MaxSubjectBytes,
	}, logger)

	n, err := c.LoadDir(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("load data dir: %w", err)
	}
	logger.Info("corpus loaded", "documents", n)

	if cfg.Watch {
		go func() {
			if err := c.Watch(ctx, cfg.DataDir); err != nil {
				logger.Error("watching data dir failed", "error", err)
			}
		}()
	}

	handler := server.NewHandler(c, server.Config{
		MaxSubjectBytes: cfg.MaxSubjectBytes,
		Version:         Version,
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
