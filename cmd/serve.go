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

	"github.com/cwbudde/peaksearch/internal/server"
	"github.com/cwbudde/peaksearch/internal/store"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP job server",
	Long: `Loads the dataset once and serves a JSON API for running searches:

  POST /api/v1/jobs              start a job ({"search": {...}, "seed": 42, "trials": 1})
  GET  /api/v1/jobs              list jobs
  GET  /api/v1/jobs/{id}/status  job progress and result
  GET  /api/v1/jobs/{id}/stream  server-sent progress events
  GET  /api/v1/reports[/{id}]    stored evaluation reports`,
	RunE: runServe,
}

func init() {
	addDatasetFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	run, err := resolveRun(cmd)
	if err != nil {
		return err
	}
	g, err := loadGrid(run)
	if err != nil {
		return err
	}

	reports, err := store.NewFSStore(run.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	srv := server.NewServer(serveAddr, server.Env{
		Grid:    g,
		Dataset: run.Dataset,
		Reports: reports,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-sigCh:
		slog.Info("Received signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
