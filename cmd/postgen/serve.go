package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulachik/postgen/internal/api"
	"github.com/abdulachik/postgen/internal/app"
	"github.com/abdulachik/postgen/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the corpus and the generator over HTTP.

When CORPUS_RELOAD_INTERVAL is set, the corpus file is watched and reloaded
after a new preprocessing run.`,
	RunE: runServe,
}

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := loadConfig((*config.Config).ValidateForServe)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	handler := api.NewHandler(a.Corpus, a.Generator, nil)
	handler.Health().Record(api.ComponentCorpus, nil, strconv.Itoa(a.Corpus.Index().Len())+" posts loaded")

	srv := api.NewHTTPServer(api.NewServer(handler), api.DefaultServerConfig(cfg.ServerPort))

	errCh := make(chan error, 2)
	if reloader := a.Reloader(handler.OnReload()); reloader != nil {
		go func() {
			if err := reloader.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("corpus reloader: %w", err)
			}
		}()
	}

	go func() {
		slog.Info("starting HTTP server",
			"addr", srv.Addr,
			"provider", cfg.LLMProvider,
			"posts", a.Corpus.Index().Len(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("received shutdown signal")
	case err := <-errCh:
		return err
	}

	slog.Info("shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
