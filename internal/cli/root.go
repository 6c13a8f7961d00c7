package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/cadence/internal/client"
	"github.com/lazypower/cadence/internal/config"
	"github.com/lazypower/cadence/internal/engine"
	"github.com/lazypower/cadence/internal/feedcache"
	"github.com/lazypower/cadence/internal/ranking"
	"github.com/lazypower/cadence/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "What matters right now",
	Long:  "Cadence ranks your tasks, goals, routines, events and notes into a feed of what deserves attention now. Single Go binary, SQLite storage.",
}

var (
	configPath string
	dbOverride string
	serverURL  string
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.cadence/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "Database path (overrides config and CADENCE_DB)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server URL for cache invalidation and remote feeds (default CADENCE_URL)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(importCmd)
}

// loadConfig reads the config file named by --config, or the default path.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if dbOverride != "" {
		cfg.Database.Path = dbOverride
	}
	return cfg, nil
}

// openDB opens the database named by cfg.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	return store.Open(dbPath)
}

// newFeedService wires the ranking pipeline and cache from cfg.
func newFeedService(cfg config.Config, db *store.DB) (*ranking.Service, *feedcache.Cache[*ranking.FeedResult], error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	p := ranking.NewPipeline(db, engine.New(cfg.Feed.Weights), loc)
	p.FetchTimeout = cfg.Feed.FetchTimeout
	p.Workers = cfg.Feed.ParseWorkers
	p.MaxItems = cfg.Feed.MaxItems

	cache := feedcache.New[*ranking.FeedResult](cfg.Feed.CacheTTL)
	return ranking.NewService(p, cache), cache, nil
}

// notifyServer tells a running server that userID's items changed. A server
// that is not running has nothing cached, so failures are only reported.
func notifyServer(cmd *cobra.Command, userID string) {
	c := client.New(serverURL)
	if !c.Healthy() {
		return
	}
	if _, err := c.Invalidate(userID); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: invalidate cached feed: %v\n", err)
	}
}
