package saver

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ReversalScanner/internal/model"
)

const utf8BOM = "\ufeff"

// CSVSaver writes UTF-8 CSV with a BOM and Chinese column headers.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

type column struct {
	header string
	value  func(Row) string
}

var (
	colCode   = column{"代码", func(r Row) string { return r.Code }}
	colName   = column{"名称", func(r Row) string { return r.Name }}
	colLabel  = column{"战法", func(r Row) string { return r.Label }}
	colNote   = column{"说明", func(r Row) string { return r.Note }}
	colStatus = column{"状态", func(r Row) string { return r.Status }}
	colRecord = column{"战绩", func(r Row) string { return r.Record }}
	colPrice  = column{"现价", func(r Row) string { return num(r.Price) }}
	colVol    = column{"今日量比", func(r Row) string { return num(r.VolRatio) }}
	colRSI    = column{"RSI6", func(r Row) string { return num(r.RSI6) }}
	colPot    = column{"距60日线", func(r Row) string { return num(r.Potential) + "%" }}
	colChange = column{"今日涨跌", func(r Row) string { return num(r.Change) + "%" }}
	colDist   = column{"距离13日线%", func(r Row) string { return num(r.DistToMA13) }}
	colClose  = column{"收盘价", func(r Row) string { return num(r.Price) }}
)

func columnsFor(kind model.ScanKind) []column {
	switch kind {
	case model.ScanOversold:
		return []column{colCode, colName, colStatus, colRecord, colPrice, colVol, colRSI, colPot, colChange}
	case model.ScanTrack:
		return []column{colCode, colName, colStatus, colDist, colClose}
	default:
		return []column{colCode, colName, colLabel, colNote, colPrice, colVol, colRSI}
	}
}

func (CSVSaver) Save(kind model.ScanKind, rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.WriteString(f, utf8BOM); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	cols := columnsFor(kind)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := make([]string, len(cols))
		for i, c := range cols {
			rec[i] = c.value(r)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// fieldSetters maps any header this package writes back onto Row fields.
var fieldSetters = map[string]func(*Row, string){
	"代码":      func(r *Row, v string) { r.Code = v },
	"code":    func(r *Row, v string) { r.Code = v },
	"名称":      func(r *Row, v string) { r.Name = v },
	"name":    func(r *Row, v string) { r.Name = v },
	"战法":      func(r *Row, v string) { r.Label = v },
	"说明":      func(r *Row, v string) { r.Note = v },
	"状态":      func(r *Row, v string) { r.Status = v },
	"战绩":      func(r *Row, v string) { r.Record = v },
	"现价":      func(r *Row, v string) { r.Price = parseNum(v) },
	"收盘价":     func(r *Row, v string) { r.Price = parseNum(v) },
	"今日量比":    func(r *Row, v string) { r.VolRatio = parseNum(v) },
	"rsi6":    func(r *Row, v string) { r.RSI6 = parseNum(v) },
	"距60日线":   func(r *Row, v string) { r.Potential = parseNum(v) },
	"今日涨跌":    func(r *Row, v string) { r.Change = parseNum(v) },
	"距离13日线%": func(r *Row, v string) { r.DistToMA13 = parseNum(v) },
}

func (CSVSaver) Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	setters := make([]func(*Row, string), len(header))
	hasCode := false
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, utf8BOM)))
		setters[i] = fieldSetters[key]
		if key == "代码" || key == "code" {
			hasCode = true
		}
	}
	if !hasCode {
		return nil, fmt.Errorf("%s: no code column", path)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var r Row
		for i, v := range rec {
			if i < len(setters) && setters[i] != nil {
				setters[i](&r, strings.TrimSpace(v))
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func parseNum(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0
	}
	return v
}
