package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"ReversalScanner/internal/model"
	"ReversalScanner/internal/notifier"
	"ReversalScanner/internal/recorder"
	"ReversalScanner/internal/report"
	"ReversalScanner/internal/saver"
)

var (
	primaryColor = lipgloss.Color("#0077cc")
	mutedColor   = lipgloss.Color("#999999")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(primaryColor).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(mutedColor)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderReport(rep *model.ScanReport) string {
	title := titleStyle.Render(fmt.Sprintf("%s  %s", notifier.Title(rep.Kind), rep.RunAt.Format("2006-01-02 15:04")))
	footer := footerStyle.Render(fmt.Sprintf("universe %d | matched %d | no match %d | skipped %d",
		rep.Universe, report.Matched(rep), rep.NoMatch, len(rep.Skips)))
	if len(rep.Results) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "暂无符合条件的标的", footer)
	}

	var t *table.Table
	rows := saver.Rows(rep)
	switch rep.Kind {
	case model.ScanOversold:
		t = newTable("代码", "名称", "状态", "战绩", "现价", "量比", "RSI6", "距60日线", "涨跌")
		for _, r := range rows {
			t.Row(r.Code, r.Name, r.Status, r.Record, fmt.Sprint(r.Price), fmt.Sprint(r.VolRatio),
				fmt.Sprint(r.RSI6), fmt.Sprintf("%.1f%%", r.Potential), fmt.Sprintf("%.1f%%", r.Change))
		}
	case model.ScanTrack:
		t = newTable("代码", "名称", "状态", "距13日线%", "收盘价")
		for _, r := range rows {
			t.Row(r.Code, r.Name, r.Status, fmt.Sprint(r.DistToMA13), fmt.Sprint(r.Price))
		}
	default:
		t = newTable("代码", "名称", "战法", "说明", "现价")
		for _, r := range rows {
			t.Row(r.Code, r.Name, r.Label, r.Note, fmt.Sprint(r.Price))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, t.Render(), footer)
}

func renderHistory(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "no archived runs"
	}
	t := newTable("run", "kind", "time", "universe", "matched", "no match", "skipped", "report")
	for _, r := range runs {
		t.Row(r.RunID[:min(8, len(r.RunID))], string(r.Kind), r.RunAt.Format("2006-01-02 15:04"),
			fmt.Sprint(r.Universe), fmt.Sprint(r.Matched), fmt.Sprint(r.NoMatch), fmt.Sprint(r.Skipped), r.ReportPath)
	}
	return t.Render()
}
