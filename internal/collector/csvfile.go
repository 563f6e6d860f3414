package collector

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"ReversalScanner/internal/model"
)

// CSVLoader reads <Dir>/<code>.csv files, one per instrument.
type CSVLoader struct {
	Dir string
}

// NewCSVLoader creates a loader rooted at dir.
func NewCSVLoader(dir string) *CSVLoader {
	return &CSVLoader{Dir: dir}
}

func (l *CSVLoader) Name() string { return "csv" }

func (l *CSVLoader) Codes() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", l.Dir, err)
	}
	var codes []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		codes = append(codes, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(codes)
	return codes, nil
}

func (l *CSVLoader) LoadSeries(code string) (*model.BarSeries, error) {
	f, err := os.Open(filepath.Join(l.Dir, code+".csv"))
	if err != nil {
		return nil, fmt.Errorf("open bars: %w", err)
	}
	defer f.Close()

	bars, err := ParseBars(f)
	if err != nil {
		return nil, err
	}
	return model.NewBarSeries(code, bars)
}

// columnAliases maps lower-cased header names, Chinese or English, to bar fields.
var columnAliases = map[string]string{
	"日期": "date", "date": "date", "trade_date": "date",
	"开盘": "open", "open": "open",
	"最高": "high", "high": "high",
	"最低": "low", "low": "low",
	"收盘": "close", "close": "close",
	"成交量": "volume", "volume": "volume", "vol": "volume",
	"涨跌幅": "pct_chg", "pct_chg": "pct_chg", "pct_change": "pct_chg",
	"换手率": "turnover", "turnover": "turnover", "turnover_rate": "turnover",
}

var requiredColumns = []string{"date", "open", "high", "low", "close", "volume"}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "20060102", "2006-01-02 15:04:05"}

// ParseBars decodes a headed CSV of daily bars and returns them sorted by date.
// Missing pct_chg or turnover values become NaN.
func ParseBars(r io.Reader) ([]model.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", model.ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", model.ErrMalformed, err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if key, ok := columnAliases[h]; ok {
			if _, dup := cols[key]; !dup {
				cols[key] = i
			}
		}
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", model.ErrMalformed, c)
		}
	}

	var bars []model.Bar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformed, err)
		}
		if blankRecord(rec) {
			continue
		}
		bar, err := parseBar(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", model.ErrMalformed, line, err)
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func parseBar(rec []string, cols map[string]int) (model.Bar, error) {
	var (
		bar model.Bar
		err error
	)
	if bar.Date, err = parseDate(field(rec, cols["date"])); err != nil {
		return bar, err
	}
	required := []struct {
		name string
		dst  *float64
	}{
		{"open", &bar.Open},
		{"high", &bar.High},
		{"low", &bar.Low},
		{"close", &bar.Close},
		{"volume", &bar.Volume},
	}
	for _, r := range required {
		v, err := parseNumber(field(rec, cols[r.name]))
		if err != nil || math.IsNaN(v) {
			return bar, fmt.Errorf("%s: invalid value %q", r.name, field(rec, cols[r.name]))
		}
		*r.dst = v
	}
	bar.PctChg = optionalNumber(rec, cols, "pct_chg")
	bar.Turnover = optionalNumber(rec, cols, "turnover")
	return bar, nil
}

func optionalNumber(rec []string, cols map[string]int, name string) float64 {
	i, ok := cols[name]
	if !ok {
		return math.NaN()
	}
	v, err := parseNumber(field(rec, i))
	if err != nil {
		return math.NaN()
	}
	return v
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date: invalid value %q", s)
}

// parseNumber accepts plain decimals with an optional trailing percent sign.
// An empty string yields NaN. Infinities are rejected.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || s == "-" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}
