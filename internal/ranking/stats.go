package ranking

import "github.com/lazypower/cadence/internal/attr"

// FieldStats tallies how one attribute resolved across a pass.
type FieldStats struct {
	Parsed    int `json:"parsed"`
	Empty     int `json:"empty"`
	Defaulted int `json:"defaulted"`
	Failed    int `json:"failed"`
}

// ParseStats summarizes attribute parsing for one ranking pass. A parse is
// failed when any non-empty field had to fall back to its default.
type ParseStats struct {
	TotalItems       int                   `json:"total_items"`
	SuccessfulParses int                   `json:"successful_parses"`
	FailedParses     int                   `json:"failed_parses"`
	ParseSuccessRate float64               `json:"parse_success_rate"`
	PerField         map[string]FieldStats `json:"per_field"`
}

func newParseStats(outcomes []attr.Outcome) ParseStats {
	s := ParseStats{
		TotalItems: len(outcomes),
		PerField:   make(map[string]FieldStats, len(attr.Fields)),
	}
	for _, f := range attr.Fields {
		s.PerField[f] = FieldStats{}
	}

	for _, o := range outcomes {
		if o.Failed() {
			s.FailedParses++
		} else {
			s.SuccessfulParses++
		}
		for _, f := range attr.Fields {
			fo := o[f]
			fs := s.PerField[f]
			switch {
			case fo.Empty:
				fs.Empty++
			case fo.Failed():
				fs.Failed++
			default:
				fs.Parsed++
			}
			if fo.Defaulted {
				fs.Defaulted++
			}
			s.PerField[f] = fs
		}
	}

	s.ParseSuccessRate = 1
	if s.TotalItems > 0 {
		s.ParseSuccessRate = float64(s.SuccessfulParses) / float64(s.TotalItems)
	}
	return s
}
