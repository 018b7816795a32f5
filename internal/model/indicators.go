package model

import (
	"encoding/json"
	"math"
)

// RSIValue is one RSI observation. Valid is false where the indicator is undefined:
// insufficient history, or a window with neither gains nor losses.
type RSIValue struct {
	Value float64
	Valid bool
}

// Defined returns a valid RSIValue holding v.
func Defined(v float64) RSIValue { return RSIValue{Value: v, Valid: true} }

// Undefined is the zero RSIValue.
var Undefined = RSIValue{}

// MarshalJSON encodes undefined values as null.
func (v RSIValue) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Value)
}

// UnmarshalJSON accepts a number or null.
func (v *RSIValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Undefined
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Defined(f)
	return nil
}

// RSISeries is aligned index-for-index with the price series it was computed from.
type RSISeries []RSIValue

// LatestDefined returns the most recent valid value, or Undefined if there is none.
func (s RSISeries) LatestDefined() RSIValue {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Valid {
			return s[i]
		}
	}
	return Undefined
}

// Floats returns the series with NaN in undefined positions.
func (s RSISeries) Floats() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		if v.Valid {
			out[i] = v.Value
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// DefinedCount reports how many positions carry a value.
func (s RSISeries) DefinedCount() int {
	n := 0
	for _, v := range s {
		if v.Valid {
			n++
		}
	}
	return n
}

// PriceSummary describes the close prices over the fetched period.
type PriceSummary struct {
	LatestClose float64 `json:"latest_close"`
	PeriodHigh  float64 `json:"period_high"`
	PeriodLow   float64 `json:"period_low"`
	Position    float64 `json:"position"` // 0.0 ~ 1.0
}
