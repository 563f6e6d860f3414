// Package report joins scan outcomes with instrument names and ranks them.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"ReversalScanner/internal/model"
)

// Aggregate builds the report of one run. outcomes[i] belongs to universe[i].
func Aggregate(kind model.ScanKind, runAt time.Time, universe []model.Instrument, outcomes []model.Outcome) *model.ScanReport {
	rep := &model.ScanReport{
		RunID:    uuid.NewString(),
		Kind:     kind,
		RunAt:    runAt,
		Universe: len(universe),
	}

	for i, o := range outcomes {
		switch o.Status {
		case model.OutcomeMatched:
			name := ""
			if i < len(universe) {
				name = universe[i].Name
			}
			rep.Results = append(rep.Results, model.ScanResult{
				Code:     o.Code,
				Name:     name,
				Label:    o.Match.Label,
				Snapshot: o.Match.Snapshot,
				Oversold: o.Match.Oversold,
				Track:    o.Match.Track,
			})
		case model.OutcomeSkipped:
			rep.Skips = append(rep.Skips, model.Skip{Code: o.Code, Reason: o.Reason})
		default:
			rep.NoMatch++
		}
	}

	if kind == model.ScanOversold {
		RankOversold(rep.Results)
	}
	return rep
}

// RankOversold orders by consecutive down days descending, then volume ratio
// ascending, then code.
func RankOversold(results []model.ScanResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Oversold, results[j].Oversold
		if a == nil || b == nil {
			if (a == nil) != (b == nil) {
				return b == nil
			}
			return results[i].Code < results[j].Code
		}
		if a.ConsecutiveDrops != b.ConsecutiveDrops {
			return a.ConsecutiveDrops > b.ConsecutiveDrops
		}
		if a.VolRatio != b.VolRatio {
			return a.VolRatio < b.VolRatio
		}
		return results[i].Code < results[j].Code
	})
}

// Matched returns the number of results.
func Matched(r *model.ScanReport) int { return len(r.Results) }

// SkipReasons counts skips by reason prefix (text before the first colon).
func SkipReasons(r *model.ScanReport) map[string]int {
	out := make(map[string]int)
	for _, s := range r.Skips {
		key := s.Reason
		for i, c := range key {
			if c == ':' {
				key = key[:i]
				break
			}
		}
		out[key]++
	}
	return out
}
