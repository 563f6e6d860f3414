package scanner

import (
	"strings"

	"ReversalScanner/internal/model"
)

// UniverseFilter drops risk-flagged names and excluded board prefixes.
type UniverseFilter struct {
	RiskMarker      string
	ExcludePrefixes []string
}

// Apply returns the kept instruments in input order.
func (f UniverseFilter) Apply(instruments []model.Instrument) []model.Instrument {
	marker := strings.ToUpper(strings.TrimSpace(f.RiskMarker))
	out := make([]model.Instrument, 0, len(instruments))
	for _, in := range instruments {
		if marker != "" && strings.Contains(strings.ToUpper(in.Name), marker) {
			continue
		}
		if f.excluded(in.Code) {
			continue
		}
		out = append(out, in)
	}
	return out
}

func (f UniverseFilter) excluded(code string) bool {
	for _, p := range f.ExcludePrefixes {
		if p != "" && strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}
