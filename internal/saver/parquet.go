package saver

import (
	"github.com/parquet-go/parquet-go"

	"ReversalScanner/internal/model"
)

// ParquetSaver writes rows as a Parquet file.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(_ model.ScanKind, rows []Row, path string) error {
	return parquet.WriteFile(path, rows)
}

func (ParquetSaver) Load(path string) ([]Row, error) {
	return parquet.ReadFile[Row](path)
}
