package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lazypower/cadence/internal/attr"
)

// handleParse runs the attribute parsers over ad-hoc text. An optional "now"
// (RFC 3339) anchors relative due dates.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Frequency    string `json:"frequency"`
		Priority     string `json:"priority"`
		RequiredTime string `json:"required_time"`
		Due          string `json:"due"`
		Now          string `json:"now"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	now := s.now()
	if req.Now != "" {
		t, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			writeError(w, http.StatusBadRequest, "now must be RFC 3339")
			return
		}
		now = t
	}

	a, outcome := attr.Parse(attr.Input{
		Frequency:    req.Frequency,
		Priority:     req.Priority,
		RequiredTime: req.RequiredTime,
		Due:          req.Due,
	}, now)

	failed := []string{}
	for _, f := range attr.Fields {
		if outcome[f].Failed() {
			failed = append(failed, f)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"attributes": a,
		"failed":     failed,
		"now":        now,
	})
}
