package signal

import "RSIWatch/internal/model"

// Regime thresholds. Both bounds belong to the neutral band.
const (
	OversoldBelow   = 30.0
	OverboughtAbove = 70.0
)

// Classify maps the latest defined RSI value to a regime.
func Classify(latest model.RSIValue) model.Regime {
	if !latest.Valid {
		return model.RegimeUnknown
	}
	switch {
	case latest.Value < OversoldBelow:
		return model.RegimeOversold
	case latest.Value > OverboughtAbove:
		return model.RegimeOverbought
	default:
		return model.RegimeNeutral
	}
}

var messages = map[model.Regime]struct {
	Text  string
	Level string
}{
	model.RegimeOversold:   {"RSI indicates Oversold: possible buy signal", "success"},
	model.RegimeOverbought: {"RSI indicates Overbought: caution advised", "warning"},
	model.RegimeNeutral:    {"RSI is in neutral range.", "info"},
	model.RegimeUnknown:    {"No RSI signal: not enough price movement in the window.", "muted"},
}

// Message returns the dashboard text for a regime.
func Message(r model.Regime) string {
	if m, ok := messages[r]; ok {
		return m.Text
	}
	return messages[model.RegimeUnknown].Text
}

// Level returns the display style for a regime: success, warning, info or muted.
func Level(r model.Regime) string {
	if m, ok := messages[r]; ok {
		return m.Level
	}
	return messages[model.RegimeUnknown].Level
}

// Evaluate classifies the latest defined value of series.
func Evaluate(series model.RSISeries) model.Signal {
	latest := series.LatestDefined()
	regime := Classify(latest)
	return model.Signal{
		Regime:  regime,
		Latest:  latest,
		Message: Message(regime),
		Level:   Level(regime),
	}
}
