package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/cadence/internal/engine"
	"github.com/lazypower/cadence/internal/ranking"
)

// weightParams maps query parameters to weight overrides.
var weightParams = []struct {
	name string
	dst  func(*engine.WeightOverrides) **float64
}{
	{"w_urgency", func(o *engine.WeightOverrides) **float64 { return &o.Urgency }},
	{"w_priority", func(o *engine.WeightOverrides) **float64 { return &o.Priority }},
	{"w_momentum", func(o *engine.WeightOverrides) **float64 { return &o.Momentum }},
	{"w_context", func(o *engine.WeightOverrides) **float64 { return &o.Context }},
	{"w_freshness", func(o *engine.WeightOverrides) **float64 { return &o.Freshness }},
}

// optionsFromQuery reads limit, offset, type, status and w_* weights.
func optionsFromQuery(r *http.Request) (ranking.Options, error) {
	q := r.URL.Query()
	var opts ranking.Options

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("limit must be an integer")
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("offset must be an integer")
		}
		opts.Offset = n
	}
	opts.Filters.Type = q.Get("type")
	opts.Filters.Status = q.Get("status")

	for _, p := range weightParams {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(p.name + " must be a number")
		}
		*p.dst(&opts.Weights) = &f
	}
	return opts, nil
}

func feedStatus(err error) int {
	switch {
	case errors.Is(err, ranking.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, ranking.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) serveFeed(w http.ResponseWriter, r *http.Request, opts ranking.Options) {
	userID := chi.URLParam(r, "userID")

	res, err := s.feeds.GenerateFeed(r.Context(), userID, opts)
	if err != nil {
		status := feedStatus(err)
		if status != http.StatusBadRequest {
			log.Printf("server: feed for %s: %v", userID, err)
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveFeed(w, r, opts)
}

func (s *Server) handlePostFeed(w http.ResponseWriter, r *http.Request) {
	var opts ranking.Options
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}
	s.serveFeed(w, r, opts)
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	n := s.feeds.InvalidateUser(userID)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "evicted": n})
}
