package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/cadence/internal/feedcache"
	"github.com/lazypower/cadence/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	feeds, cache, err := newFeedService(cfg, db)
	if err != nil {
		return err
	}
	sweeper := feedcache.StartSweeper(cache, cfg.Feed.SweepInterval)
	defer sweeper.Stop()

	srv := server.New(db, feeds, VersionString())
	srv.SetRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "cadence serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", db.Path)
		fmt.Fprintf(os.Stderr, "  cache ttl: %s, sweep every %s\n", cache.TTL(), cfg.Feed.SweepInterval)
		if cfg.RateLimit.RPS > 0 {
			fmt.Fprintf(os.Stderr, "  feed rate limit: %.1f/s (burst %d)\n", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
