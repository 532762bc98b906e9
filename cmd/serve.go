package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/market-search-scraper/internal/api"
	"github.com/JakeFAU/market-search-scraper/internal/id/uuid"
	"github.com/JakeFAU/market-search-scraper/internal/metrics"
	"github.com/JakeFAU/market-search-scraper/internal/policy/ratelimit"
	"github.com/JakeFAU/market-search-scraper/internal/scraper"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scrape HTTP API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := envFrom(cmd)
			if port > 0 {
				e.cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, e)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

func serve(ctx context.Context, e *env) error {
	cfg, logger := e.cfg, e.logger
	metrics.Init()

	limiter := ratelimit.New(ratelimit.Config{DefaultRPS: cfg.Scraper.DomainQPS, DefaultBurst: 1})
	sc := scraper.New(
		cfg.ScraperOptions(),
		scraper.NewChromedpLauncher(cfg.ChromedpOptions()),
		limiter,
		uuid.New(),
		logger.Named("scraper"),
	)
	apiServer := api.NewServer(sc, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// In-flight scrapes see the shutdown signal and release their browsers.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server started",
			zap.Int("port", cfg.Server.Port),
			zap.String("marketplace", cfg.Scraper.Marketplace),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
