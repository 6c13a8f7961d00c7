package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/cadence/internal/engine"
	"github.com/lazypower/cadence/internal/ranking"
)

const defaultDigestItems = 10

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit := defaultDigestItems
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	res, err := s.feeds.GenerateFeed(r.Context(), userID, ranking.Options{Limit: limit})
	if err != nil {
		writeError(w, feedStatus(err), err.Error())
		return
	}

	md := Digest(res, s.now())
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(md))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"digest":   md,
		"items":    len(res.Items),
		"cached":   res.Metadata.Cached,
		"total":    res.Metadata.TotalItems,
		"has_more": res.Metadata.Pagination.HasMore,
	})
}

// Digest renders a feed page as markdown, grouping items that are due soon
// and items with momentum ahead of the rest. Rank order is kept within
// each group.
func Digest(res *ranking.FeedResult, now time.Time) string {
	var b strings.Builder

	b.WriteString("## Right Now\n")
	if len(res.Items) == 0 {
		b.WriteString("\nNothing on your plate.\n")
		return b.String()
	}

	var due, moving, rest []engine.ScoredItem
	for _, it := range res.Items {
		switch {
		case it.Scores.Urgency >= 75:
			due = append(due, it)
		case it.Scores.Momentum >= 50:
			moving = append(moving, it)
		default:
			rest = append(rest, it)
		}
	}

	section := func(title string, items []engine.ScoredItem) {
		if len(items) == 0 {
			return
		}
		b.WriteString("\n### " + title + "\n")
		for _, it := range items {
			b.WriteString(digestLine(it, now))
		}
	}
	section("Due Soon", due)
	section("Keep Going", moving)
	section("Also Worth a Look", rest)

	if res.Metadata.Pagination.HasMore {
		b.WriteString(fmt.Sprintf("\n_%d more items not shown_\n", res.Metadata.TotalItems-len(res.Items)-res.Metadata.Pagination.Offset))
	}
	return b.String()
}

func digestLine(it engine.ScoredItem, now time.Time) string {
	text := it.Item.ContentShort
	if text == "" {
		text = it.Item.Content
	}
	if r := []rune(text); len(r) > 120 {
		text = string(r[:117]) + "..."
	}

	var notes []string
	if d := it.Attributes.DueDate; d != nil {
		switch days := dueInDays(*d, now); {
		case days < 0:
			notes = append(notes, "overdue")
		case days == 0:
			notes = append(notes, "due today")
		case days == 1:
			notes = append(notes, "due tomorrow")
		default:
			notes = append(notes, "due "+d.Format("Jan 2"))
		}
	}
	if it.Item.PerformanceStreak > 0 {
		notes = append(notes, fmt.Sprintf("%d streak", it.Item.PerformanceStreak))
	}
	notes = append(notes, fmt.Sprintf("score %.1f", it.Total))

	return fmt.Sprintf("- [%s] %s (%s)\n", it.Item.Type, text, strings.Join(notes, ", "))
}

func dueInDays(due, now time.Time) int {
	y, m, d := now.In(due.Location()).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, due.Location())
	return int(due.Sub(today).Hours() / 24)
}
