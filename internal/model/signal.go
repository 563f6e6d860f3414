package model

import "time"

// ScanKind names the evaluator a scan run applies.
type ScanKind string

const (
	ScanCandlestick ScanKind = "CANDLESTICK"
	ScanShadow      ScanKind = "SHADOW"
	ScanOversold    ScanKind = "OVERSOLD"
	ScanTrack       ScanKind = "TRACK"
)

// Label identifies a fired rule. Note carries the desk commentary shown in reports.
type Label struct {
	Name string
	Note string
}

// OversoldDetail holds the descriptive fields of a composite-filter pass.
type OversoldDetail struct {
	Price            float64
	MA5              float64
	MA60             float64
	AvgTurnover30    float64
	VolRatio         float64
	RSI6             float64
	KDJK             float64
	Potential        float64 // percent distance from close up to MA60
	Change           float64 // today's percent change
	ConsecutiveDrops int
	Breakout         bool
	VolumeSurge      bool
}

// TrackDetail holds the descriptive fields of a confirmed shortlist entry.
type TrackDetail struct {
	DistToMA13 float64 // percent
	Close      float64
}

// PatternMatch is produced only when an evaluator fires for an instrument.
type PatternMatch struct {
	Code     string
	Label    Label
	Snapshot *IndicatorSnapshot
	Oversold *OversoldDetail
	Track    *TrackDetail
}

// OutcomeStatus classifies the per-instrument result of a scan.
type OutcomeStatus int

const (
	OutcomeNoMatch OutcomeStatus = iota
	OutcomeMatched
	OutcomeSkipped
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeMatched:
		return "MATCHED"
	case OutcomeSkipped:
		return "SKIPPED"
	default:
		return "NO_MATCH"
	}
}

// Outcome is the result of evaluating one instrument.
type Outcome struct {
	Code   string
	Status OutcomeStatus
	Match  *PatternMatch
	Reason string // why the instrument was skipped or not evaluable
}

// ScanResult is a match joined with the instrument's display name.
type ScanResult struct {
	Code     string
	Name     string
	Label    Label
	Snapshot *IndicatorSnapshot
	Oversold *OversoldDetail
	Track    *TrackDetail
}

// Skip records an instrument that could not be evaluated.
type Skip struct {
	Code   string
	Reason string
}

// ScanReport is the ranked, in-memory output of one scan run.
type ScanReport struct {
	RunID    string
	Kind     ScanKind
	RunAt    time.Time
	Universe int
	Results  []ScanResult
	NoMatch  int
	Skips    []Skip
}
