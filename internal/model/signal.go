package model

import "time"

// Regime is the qualitative bucket of the latest RSI value.
type Regime string

const (
	RegimeOversold   Regime = "OVERSOLD"
	RegimeOverbought Regime = "OVERBOUGHT"
	RegimeNeutral    Regime = "NEUTRAL"
	RegimeUnknown    Regime = "UNKNOWN"
)

// Signal is the classified regime with its display text.
type Signal struct {
	Regime  Regime   `json:"regime"`
	Latest  RSIValue `json:"latest_rsi"`
	Message string   `json:"message"`
	Level   string   `json:"level"`
}

// Snapshot is everything the dashboard renders for one request.
type Snapshot struct {
	Symbol      string       `json:"symbol"`
	Period      Period       `json:"period"`
	Window      int          `json:"window"`
	Source      string       `json:"source"`
	Bars        []OHLCV      `json:"bars"`
	RSI         RSISeries    `json:"rsi"`
	Summary     PriceSummary `json:"summary"`
	Signal      Signal       `json:"signal"`
	GeneratedAt time.Time    `json:"generated_at"`
}
