package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm/vcmp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveAddr string
	serveRoot string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a directory of pages, expanding each on request",
	Long: `Serves --root over HTTP. Requests for .html pages (and directory indexes) are
expanded per request; other files are served unchanged.

Example:
  vcmp serve --root site --components site/vc_components --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Requests run passes concurrently; share fetches of the same template.
	f, err := cfg.Fetcher()
	if err != nil {
		return err
	}
	exp := vcmp.New(vcmp.Dedup(f), cfg.Options(logger)...)

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           vcmp.NewServer(os.DirFS(serveRoot), exp),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", serveAddr), zap.String("root", serveRoot))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
