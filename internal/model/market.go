package model

import (
	"errors"
	"fmt"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Period is a lookback window understood by the price providers.
type Period string

const (
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
)

// DefaultPeriod is the lookback used when none is requested.
const DefaultPeriod = Period1y

// Periods lists the supported lookbacks in ascending order.
var Periods = []Period{Period1mo, Period3mo, Period6mo, Period1y, Period2y, Period5y}

// ErrInvalidPeriod is returned by ParsePeriod for unsupported values.
var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod validates s against Periods. An empty string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return DefaultPeriod, nil
	}
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

// PriceSeries holds the daily bars for one symbol over one period.
type PriceSeries struct {
	Symbol    string    `json:"symbol"`
	Period    Period    `json:"period"`
	Bars      []OHLCV   `json:"bars"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Closes returns the closing prices in chronological order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Days approximates the number of calendar days covered by p.
func (p Period) Days() int {
	switch p {
	case Period1mo:
		return 30
	case Period3mo:
		return 90
	case Period6mo:
		return 182
	case Period2y:
		return 730
	case Period5y:
		return 1826
	default:
		return 365
	}
}
