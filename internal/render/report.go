package render

import (
	"fmt"
	"strings"

	"RSIWatch/internal/calculator"
	"RSIWatch/internal/model"
	"RSIWatch/internal/signal"

	"github.com/guptarohit/asciigraph"
)

// ChartWidth is the terminal chart width in columns.
const ChartWidth = 72

var levelIcons = map[string]string{
	"success": "✅",
	"warning": "⚠️",
	"info":    "ℹ️",
	"muted":   "·",
}

// FormatReport renders a snapshot as a terminal report with price and RSI charts.
func FormatReport(snap *model.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 %s RSI Dashboard | %s | period %s | window %d\n\n",
		snap.Symbol, snap.GeneratedAt.Format("2006-01-02 15:04"), snap.Period, snap.Window))

	closes := make([]float64, len(snap.Bars))
	for i, bar := range snap.Bars {
		closes[i] = bar.Close
	}
	b.WriteString(fmt.Sprintf("%s price\n", snap.Symbol))
	b.WriteString(plot(closes, asciigraph.Precision(2)))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("RSI (window=%d)\n", snap.Window))
	b.WriteString(plot(definedValues(snap.RSI),
		asciigraph.LowerBound(0), asciigraph.UpperBound(100), asciigraph.Precision(0)))
	b.WriteString("\n\n")

	b.WriteString(FormatSummary(snap))
	return b.String()
}

// FormatSummary is the text block under the charts: latest values and the regime message.
func FormatSummary(snap *model.Snapshot) string {
	var b strings.Builder
	s := snap.Summary
	b.WriteString(fmt.Sprintf("Last close: %.2f (range %.2f ~ %.2f, position %.0f%%)\n",
		s.LatestClose, s.PeriodLow, s.PeriodHigh, s.Position*100))
	if snap.Signal.Latest.Valid {
		b.WriteString(fmt.Sprintf("Latest RSI: %.2f\n", snap.Signal.Latest.Value))
	} else {
		b.WriteString("Latest RSI: n/a\n")
	}
	b.WriteString(fmt.Sprintf("📍 %s %s\n", levelIcons[snap.Signal.Level], snap.Signal.Message))
	return b.String()
}

// FormatSignalLine is a one-line summary used in logs and the scheduler.
func FormatSignalLine(snap *model.Snapshot) string {
	rsi := "n/a"
	if snap.Signal.Latest.Valid {
		rsi = fmt.Sprintf("%.2f", snap.Signal.Latest.Value)
	}
	return fmt.Sprintf("%s %s w=%d rsi=%s regime=%s: %s",
		snap.Symbol, snap.Period, snap.Window, rsi, snap.Signal.Regime, signal.Message(snap.Signal.Regime))
}

func plot(values []float64, opts ...asciigraph.Option) string {
	if len(values) < 2 {
		return "  (not enough data to chart)"
	}
	opts = append([]asciigraph.Option{asciigraph.Height(10), asciigraph.Width(ChartWidth)}, opts...)
	if hi, lo, err := calculator.CalculateRange(values); err == nil && lo == hi {
		// flat series: give the axis some room
		opts = append(opts, asciigraph.LowerBound(lo-1), asciigraph.UpperBound(hi+1))
	}
	return asciigraph.Plot(values, opts...)
}

// definedValues drops undefined RSI positions; the chart shows only computed values.
func definedValues(series model.RSISeries) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if v.Valid {
			out = append(out, v.Value)
		}
	}
	return out
}
