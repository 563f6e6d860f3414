package saver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ReversalScanner/internal/model"
)

// ErrNoReport is returned when no saved report matches a prefix.
var ErrNoReport = errors.New("no saved report")

// Prefix returns the file name prefix used for reports of kind.
func Prefix(kind model.ScanKind) string {
	switch kind {
	case model.ScanCandlestick:
		return "final_strategies"
	case model.ScanShadow:
		return "geshan_daniu"
	case model.ScanOversold:
		return "pick"
	case model.ScanTrack:
		return "signal"
	default:
		return strings.ToLower(string(kind))
	}
}

// ReportPath returns <base>/YYYY/MM/<prefix>_<YYYYMMDD_HHMMSS>.<ext>.
func ReportPath(baseDir, prefix string, at time.Time, ext string) string {
	name := fmt.Sprintf("%s_%s.%s", prefix, at.Format("20060102_150405"), ext)
	return filepath.Join(baseDir, at.Format("2006"), at.Format("01"), name)
}

// WriteReport saves rep under baseDir and returns the file path.
func WriteReport(s ReportSaver, baseDir string, rep *model.ScanReport) (string, error) {
	path := ReportPath(baseDir, Prefix(rep.Kind), rep.RunAt, s.Extension())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	if err := s.Save(rep.Kind, Rows(rep), path); err != nil {
		return "", fmt.Errorf("save %s report: %w", s.Extension(), err)
	}
	return path, nil
}

// LatestReport finds the newest report named <prefix>_* in the month of at,
// falling back to the previous month.
func LatestReport(baseDir, prefix string, at time.Time) (string, error) {
	firstOfMonth := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
	for _, month := range []time.Time{firstOfMonth, firstOfMonth.AddDate(0, -1, 0)} {
		dir := filepath.Join(baseDir, month.Format("2006"), month.Format("01"))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("list %s: %w", dir, err)
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || !strings.HasPrefix(e.Name(), prefix+"_") || ForPath(e.Name()) == nil {
				continue
			}
			names = append(names, e.Name())
		}
		if len(names) > 0 {
			sort.Strings(names)
			return filepath.Join(dir, names[len(names)-1]), nil
		}
	}
	return "", fmt.Errorf("%w: prefix %q under %s", ErrNoReport, prefix, baseDir)
}

// ReadReport loads rows from a saved report, choosing the format by extension.
func ReadReport(path string) ([]Row, error) {
	s := ForPath(path)
	if s == nil {
		return nil, fmt.Errorf("unsupported report format: %s", path)
	}
	rows, err := s.Load(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	return rows, nil
}
