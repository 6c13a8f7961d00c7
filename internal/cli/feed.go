package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lazypower/cadence/internal/client"
	"github.com/lazypower/cadence/internal/engine"
	"github.com/lazypower/cadence/internal/ranking"
	"github.com/lazypower/cadence/internal/server"
)

var (
	feedLimit    int
	feedOffset   int
	feedType     string
	feedStatus   string
	feedRemote   bool
	feedJSON     bool
	feedMarkdown bool
)

var feedCmd = &cobra.Command{
	Use:   "feed [user]",
	Short: "Show a user's ranked feed",
	Long:  "Rank a user's items and print the feed. With --remote the feed is fetched from a running server (and its cache) instead of computed locally.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeed,
}

func init() {
	feedCmd.Flags().IntVarP(&feedLimit, "limit", "n", 10, "Maximum number of items")
	feedCmd.Flags().IntVar(&feedOffset, "offset", 0, "Skip this many ranked items")
	feedCmd.Flags().StringVarP(&feedType, "type", "t", "", "Only items of this type (goal, routine, task, event, note)")
	feedCmd.Flags().StringVar(&feedStatus, "status", "", "Only items with this status")
	feedCmd.Flags().BoolVar(&feedRemote, "remote", false, "Fetch from the running server")
	feedCmd.Flags().BoolVar(&feedJSON, "json", false, "Print the raw feed as JSON")
	feedCmd.Flags().BoolVar(&feedMarkdown, "markdown", false, "Print a markdown digest")
}

func runFeed(cmd *cobra.Command, args []string) error {
	userID := args[0]
	opts := ranking.Options{
		Limit:   feedLimit,
		Offset:  feedOffset,
		Filters: ranking.Filters{Type: feedType, Status: feedStatus},
	}

	var res *ranking.FeedResult
	if feedRemote {
		var err error
		res, err = client.New(serverURL).Feed(userID, opts)
		if err != nil {
			return fmt.Errorf("remote feed: %w", err)
		}
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := openDB(cfg)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		feeds, _, err := newFeedService(cfg, db)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		res, err = feeds.GenerateFeed(ctx, userID, opts)
		if err != nil {
			return fmt.Errorf("generate feed: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	switch {
	case feedJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case feedMarkdown:
		_, err := io.WriteString(out, server.Digest(res, time.Now()))
		return err
	default:
		renderFeed(out, res)
		return nil
	}
}

// renderFeed prints one line per item with its score breakdown.
func renderFeed(w io.Writer, res *ranking.FeedResult) {
	if len(res.Items) == 0 {
		fmt.Fprintln(w, "Nothing ranked. Add some items first.")
		return
	}

	bold := color.New(color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	for i, it := range res.Items {
		text := it.Item.ContentShort
		if text == "" {
			text = it.Item.Content
		}
		fmt.Fprintf(w, "%2d. %s %s %s\n", res.Metadata.Pagination.Offset+i+1, scoreColor(it.Total)("%5.1f", it.Total), bold(text), gray("["+it.Item.Type+"]"))
		fmt.Fprintf(w, "    %s\n", gray(breakdown(it)))
	}

	m := res.Metadata
	footer := fmt.Sprintf("%d of %d items, %d ms, parse success %.0f%%", len(res.Items), m.TotalItems, m.ProcessingTimeMs, m.ParseStats.ParseSuccessRate*100)
	if m.Cached {
		footer += ", cached"
	}
	if m.Pagination.HasMore {
		footer += ", more available"
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, gray(footer))
}

func scoreColor(total float64) func(format string, a ...interface{}) string {
	switch {
	case total >= 70:
		return color.New(color.FgRed, color.Bold).SprintfFunc()
	case total >= 50:
		return color.New(color.FgYellow).SprintfFunc()
	default:
		return color.New(color.FgGreen).SprintfFunc()
	}
}

func breakdown(it engine.ScoredItem) string {
	s := it.Scores
	line := fmt.Sprintf("urgency %.0f  priority %.0f  momentum %.0f  context %.0f  freshness %.0f",
		s.Urgency, s.Priority, s.Momentum, s.Context, s.Freshness)
	if d := it.Attributes.DueDate; d != nil {
		line += "  due " + d.Format("Mon Jan 2")
	}
	if it.Item.UpdatedAt > 0 {
		line += "  updated " + humanize.Time(it.Item.Modified())
	}
	return line
}
