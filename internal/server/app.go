// Package server composes the reference chat server.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/IndraPur1/ChatApp/internal/logging"
	"github.com/IndraPur1/ChatApp/internal/server/config"
	"github.com/IndraPur1/ChatApp/internal/server/httpapi"
	"github.com/IndraPur1/ChatApp/internal/server/store"
)

const shutdownTimeout = 5 * time.Second

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func Run(ctx context.Context, cfg config.Config, log logging.Logger) error {
	st := store.New()
	api := httpapi.NewServer(cfg, st, log)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
