package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldscope/vztrack/internal/httpapi"
	"github.com/fieldscope/vztrack/internal/reporting"
	"github.com/fieldscope/vztrack/internal/store"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST backend over the reporting API",
	Long: `Serves the JSON API under /api/v1: project data proxied from the
external reporting system plus locally stored notes and tasks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := store.OpenTracker(filepath.Join(localRoot, "tracker.db"))
		if err != nil {
			return err
		}
		defer tracker.Close()

		reports := reporting.NewClient(cfg.ReportingBaseURL)
		api := httpapi.NewServer(reports, tracker, logger)

		addr := cfg.ListenAddr
		if flagServeAddr != "" {
			addr = flagServeAddr
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", addr),
				zap.String("reporting", cfg.ReportingBaseURL))
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "listen address (overrides config listen_addr)")
}
