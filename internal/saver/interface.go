package saver

import (
	"path/filepath"
	"strings"

	"ReversalScanner/internal/model"
)

// ReportSaver writes and reads report rows in one file format.
type ReportSaver interface {
	Save(kind model.ScanKind, rows []Row, path string) error
	Load(path string) ([]Row, error)
	Extension() string
}

// NewReportSaver returns the implementation for format (csv, json, parquet),
// or nil if the format is not supported.
func NewReportSaver(format string) ReportSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "json":
		return JSONSaver{}
	case "parquet":
		return ParquetSaver{}
	default:
		return nil
	}
}

// ForPath picks the saver matching a file's extension.
func ForPath(path string) ReportSaver {
	return NewReportSaver(strings.TrimPrefix(filepath.Ext(path), "."))
}
