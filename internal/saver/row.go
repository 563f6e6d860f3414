// Package saver writes scan reports to dated files and reads them back.
package saver

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"ReversalScanner/internal/model"
)

// Row is the flat, file-level form of one scan result.
// Percent fields are already multiplied by 100. Undefined numbers are written as 0.
type Row struct {
	Code       string  `json:"code" parquet:"code"`
	Name       string  `json:"name" parquet:"name"`
	Kind       string  `json:"kind" parquet:"kind"`
	Label      string  `json:"label" parquet:"label"`
	Note       string  `json:"note,omitempty" parquet:"note,optional"`
	Status     string  `json:"status,omitempty" parquet:"status,optional"`
	Record     string  `json:"record,omitempty" parquet:"record,optional"`
	Price      float64 `json:"price" parquet:"price"`
	VolRatio   float64 `json:"vol_ratio,omitempty" parquet:"vol_ratio,optional"`
	RSI6       float64 `json:"rsi6,omitempty" parquet:"rsi6,optional"`
	Potential  float64 `json:"potential_pct,omitempty" parquet:"potential_pct,optional"`
	Change     float64 `json:"change_pct,omitempty" parquet:"change_pct,optional"`
	DistToMA13 float64 `json:"dist_to_ma13_pct,omitempty" parquet:"dist_to_ma13_pct,optional"`
}

// Rows flattens a report in its ranked order.
func Rows(rep *model.ScanReport) []Row {
	rows := make([]Row, 0, len(rep.Results))
	for _, r := range rep.Results {
		row := Row{
			Code:  r.Code,
			Name:  r.Name,
			Kind:  string(rep.Kind),
			Label: r.Label.Name,
			Note:  r.Label.Note,
		}
		if s := r.Snapshot; s != nil {
			row.Price = round(s.Close, 2)
			row.VolRatio = round(s.VolRatio, 2)
			row.RSI6 = round(s.RSI6, 1)
		}
		if d := r.Oversold; d != nil {
			row.Status = oversoldStatus(d)
			row.Record = fmt.Sprintf("连跌%d天首红", d.ConsecutiveDrops)
			row.Price = round(d.Price, 2)
			row.VolRatio = round(d.VolRatio, 2)
			row.RSI6 = round(d.RSI6, 1)
			row.Potential = round(d.Potential, 1)
			row.Change = round(d.Change, 1)
		}
		if tr := r.Track; tr != nil {
			row.Status = r.Label.Note
			row.Price = round(tr.Close, 2)
			row.DistToMA13 = round(tr.DistToMA13, 2)
		}
		rows = append(rows, row)
	}
	return rows
}

// Shortlist extracts the instruments listed in previously saved rows.
func Shortlist(rows []Row) []model.Instrument {
	seen := make(map[string]bool, len(rows))
	out := make([]model.Instrument, 0, len(rows))
	for _, r := range rows {
		if r.Code == "" || seen[r.Code] {
			continue
		}
		seen[r.Code] = true
		out = append(out, model.Instrument{Code: r.Code, Name: r.Name})
	}
	return out
}

func oversoldStatus(d *model.OversoldDetail) string {
	trend, vol := "筑底", "平量"
	if d.Breakout {
		trend = "⭐突破"
	}
	if d.VolumeSurge {
		vol = "放量"
	}
	return trend + "/" + vol
}

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
