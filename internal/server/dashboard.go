package server

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strings"

	"RSIWatch/internal/calculator"
	"RSIWatch/internal/config"
	"RSIWatch/internal/model"
	"RSIWatch/internal/signal"

	"go.uber.org/zap"
)

const (
	chartWidth  = 800.0
	chartHeight = 240.0
	chartPad    = 8.0
)

//go:embed templates/dashboard.html
var dashboardHTML string

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

type chart struct {
	Width, Height float64
	Lines         []string
	Guides        []guide
	Min, Max      string
}

type guide struct {
	Y     float64
	Label string
}

type dashboardView struct {
	Symbol    string
	Period    model.Period
	Window    int
	Periods   []model.Period
	MinWindow int
	MaxWindow int
	Snapshot  *model.Snapshot
	Price     chart
	RSI       chart
	Error     string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := dashboardView{
		Symbol:    s.opts.Symbol,
		Period:    s.opts.DefaultPeriod,
		Window:    s.opts.DefaultWindow,
		Periods:   model.Periods,
		MinWindow: config.MinWindow,
		MaxWindow: config.MaxWindow,
	}

	status := http.StatusOK
	period, window, err := s.parseParams(r)
	switch {
	case err != nil:
		status = http.StatusBadRequest
		view.Error = err.Error()
	default:
		view.Period, view.Window = period, window
		snap, err := s.collector.Collect(r.Context(), period, window)
		if err != nil {
			s.logger.Error("dashboard collect", zap.Error(err))
			status = http.StatusBadGateway
			view.Error = "Price data unavailable: " + err.Error()
			break
		}
		view.Snapshot = snap
		view.Price = priceChart(snap.Bars)
		view.RSI = rsiChart(snap.RSI)
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, view); err != nil {
		s.logger.Error("render dashboard", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func priceChart(bars []model.OHLCV) chart {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	c := chart{Width: chartWidth, Height: chartHeight}
	high, low, err := calculator.CalculateRange(closes)
	if err != nil {
		return c
	}
	if high == low {
		high, low = high+1, low-1
	}
	c.Min, c.Max = fmt.Sprintf("%.2f", low), fmt.Sprintf("%.2f", high)
	c.Lines = polylines(closes, low, high)
	return c
}

func rsiChart(rsi model.RSISeries) chart {
	c := chart{
		Width:  chartWidth,
		Height: chartHeight,
		Min:    "0",
		Max:    "100",
		Lines:  polylines(rsi.Floats(), 0, 100),
	}
	c.Guides = []guide{
		{Y: scaleY(signal.OverboughtAbove, 0, 100), Label: "70"},
		{Y: scaleY(signal.OversoldBelow, 0, 100), Label: "30"},
	}
	return c
}

// polylines converts values into SVG point lists, breaking the line at NaN gaps.
func polylines(values []float64, low, high float64) []string {
	if len(values) < 2 {
		return nil
	}
	step := (chartWidth - 2*chartPad) / float64(len(values)-1)

	var lines []string
	var seg []string
	flush := func() {
		if len(seg) > 1 {
			lines = append(lines, strings.Join(seg, " "))
		}
		seg = seg[:0]
	}
	for i, v := range values {
		if math.IsNaN(v) {
			flush()
			continue
		}
		x := chartPad + float64(i)*step
		seg = append(seg, fmt.Sprintf("%.1f,%.1f", x, scaleY(v, low, high)))
	}
	flush()
	return lines
}

func scaleY(v, low, high float64) float64 {
	span := high - low
	if span == 0 {
		return chartHeight / 2
	}
	return chartPad + (high-v)/span*(chartHeight-2*chartPad)
}
