package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"ReversalScanner/internal/model"
	"ReversalScanner/internal/recorder"
	"ReversalScanner/internal/report"
)

// MaxListed caps the results listed in one message; Telegram rejects texts over 4096 chars.
const MaxListed = 30

var kindTitles = map[model.ScanKind]string{
	model.ScanCandlestick: "综合战法扫描",
	model.ScanShadow:      "隔山打牛扫描",
	model.ScanOversold:    "极致缩量超跌精选",
	model.ScanTrack:       "13日线回踩追踪",
}

// Title returns the display title of a scan kind.
func Title(kind model.ScanKind) string {
	if t, ok := kindTitles[kind]; ok {
		return t
	}
	return string(kind)
}

// FormatScanReport formats a finished scan into a Telegram message.
func FormatScanReport(rep *model.ScanReport, reportPath string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🚀 <b>%s</b> | %s\n\n", Title(rep.Kind), rep.RunAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("扫描标的: %d | 命中: %d | 未命中: %d | 跳过: %d\n",
		rep.Universe, report.Matched(rep), rep.NoMatch, len(rep.Skips)))

	if len(rep.Results) == 0 {
		b.WriteString("\n😴 暂无符合条件的标的\n")
	} else {
		b.WriteString("\n")
		for i, r := range rep.Results {
			if i == MaxListed {
				b.WriteString(fmt.Sprintf("… 另有 %d 只，详见报告文件\n", len(rep.Results)-MaxListed))
				break
			}
			b.WriteString(formatResult(i+1, r))
		}
	}

	if len(rep.Skips) > 0 {
		reasons := report.SkipReasons(rep)
		keys := make([]string, 0, len(reasons))
		for k := range reasons {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s×%d", k, reasons[k])
		}
		b.WriteString(fmt.Sprintf("\n⚠️ 跳过原因: %s\n", html.EscapeString(strings.Join(parts, ", "))))
	}
	if reportPath != "" {
		b.WriteString(fmt.Sprintf("\n📁 %s\n", html.EscapeString(reportPath)))
	}
	return b.String()
}

func formatResult(rank int, r model.ScanResult) string {
	name := html.EscapeString(r.Name)
	switch {
	case r.Oversold != nil:
		d := r.Oversold
		return fmt.Sprintf("%d. %s %s | 现价 %.2f | 连跌%d天 | 量比 %.2f | RSI6 %.1f | 距60日线 %.1f%%\n",
			rank, r.Code, name, d.Price, d.ConsecutiveDrops, d.VolRatio, d.RSI6, d.Potential)
	case r.Track != nil:
		return fmt.Sprintf("%d. %s %s | 收盘 %.2f | 距13日线 %.2f%%\n",
			rank, r.Code, name, r.Track.Close, r.Track.DistToMA13)
	default:
		return fmt.Sprintf("%d. %s %s | %s\n", rank, r.Code, name, html.EscapeString(r.Label.Note))
	}
}

// FormatRunHistory lists archived runs, newest first.
func FormatRunHistory(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "暂无扫描记录"
	}
	var b strings.Builder
	b.WriteString("🗂 <b>最近扫描</b>\n\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s %s: 命中 %d / %d, 跳过 %d\n",
			r.RunAt.Format("01-02 15:04"), Title(r.Kind), r.Matched, r.Universe, r.Skipped))
	}
	return b.String()
}

// FormatFailure reports a run that aborted before producing a report.
func FormatFailure(kind model.ScanKind, err error) string {
	return fmt.Sprintf("❌ %s失败: %s", Title(kind), html.EscapeString(err.Error()))
}

// HelpText lists the chat commands.
const HelpText = "可用命令:\n• /scan 综合战法扫描\n• /shadow 隔山打牛扫描\n• /oversold 极致缩量超跌精选\n• /track 13日线回踩追踪\n• /history 最近扫描记录"
