package collector

import "ReversalScanner/internal/model"

// Loader reads daily bar histories.
type Loader interface {
	// LoadSeries returns the validated bar series of one instrument.
	LoadSeries(code string) (*model.BarSeries, error)
	// Codes lists the instruments that have data available, sorted.
	Codes() ([]string, error)
	Name() string
}
