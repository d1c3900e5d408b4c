package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidbz/ideaforge/internal/cache/sweeper"
	"github.com/davidbz/ideaforge/internal/config"
	"github.com/davidbz/ideaforge/internal/domain"
	"github.com/davidbz/ideaforge/internal/http"
	"github.com/davidbz/ideaforge/internal/observability"
	"github.com/davidbz/ideaforge/internal/store/sqlite"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(loadConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := buildContainer(loadConfig)
			if err != nil {
				return err
			}

			return container.Invoke(func(
				logger *zap.Logger,
				server *http.Server,
				sweep *sweeper.Sweeper,
				cache *domain.AnalysisCache,
				store *sqlite.IdeaStore,
			) error {
				defer logger.Sync() //nolint:errcheck // stderr sync fails on some platforms
				defer store.Close()
				defer cache.Close()

				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				go func() {
					_ = sweep.Run(ctx)
				}()

				serveErr := make(chan error, 1)
				go func() {
					serveErr <- server.Start()
				}()

				select {
				case err := <-serveErr:
					return err
				case <-ctx.Done():
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("graceful shutdown: %w", err)
				}
				if err := <-serveErr; err != nil && !errors.Is(err, context.Canceled) {
					return err
				}

				observability.FromContext(ctx).Info("server stopped")
				return nil
			})
		},
	}
}
