package collector

import (
	"fmt"
	"os"
	"sort"

	"ReversalScanner/internal/model"
)

// MemoryLoader serves fixed bar data for development and testing.
type MemoryLoader struct {
	Bars   map[string][]model.Bar
	Errors map[string]error
	// Panics lists codes whose load panics.
	Panics map[string]bool
}

func (m *MemoryLoader) Name() string { return "memory" }

func (m *MemoryLoader) Codes() ([]string, error) {
	codes := make([]string, 0, len(m.Bars)+len(m.Errors))
	for c := range m.Bars {
		codes = append(codes, c)
	}
	for c := range m.Errors {
		if _, ok := m.Bars[c]; !ok {
			codes = append(codes, c)
		}
	}
	sort.Strings(codes)
	return codes, nil
}

func (m *MemoryLoader) LoadSeries(code string) (*model.BarSeries, error) {
	if m.Panics[code] {
		panic("memory loader: forced panic for " + code)
	}
	if err, ok := m.Errors[code]; ok {
		return nil, err
	}
	bars, ok := m.Bars[code]
	if !ok {
		return nil, fmt.Errorf("open bars: %w", os.ErrNotExist)
	}
	return model.NewBarSeries(code, bars)
}

// Available keeps the instruments the loader has data for, in input order.
func Available(l Loader, instruments []model.Instrument) ([]model.Instrument, error) {
	codes, err := l.Codes()
	if err != nil {
		return nil, fmt.Errorf("list %s codes: %w", l.Name(), err)
	}
	have := make(map[string]bool, len(codes))
	for _, c := range codes {
		have[c] = true
	}
	out := make([]model.Instrument, 0, len(instruments))
	for _, in := range instruments {
		if have[in.Code] {
			out = append(out, in)
		}
	}
	return out, nil
}
