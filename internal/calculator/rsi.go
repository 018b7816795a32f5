package calculator

import (
	"errors"
	"fmt"
	"math"

	"RSIWatch/internal/model"
)

// ErrInvalidWindow is returned when the RSI window is smaller than one.
var ErrInvalidWindow = errors.New("rsi window must be at least 1")

// ComputeRSI returns the simple-moving-average RSI of prices, aligned with the input.
//
// Position i is defined once window price changes ending at i are available, so indices
// 0..window-1 are always undefined. A window with no losses yields exactly 100; a window
// with neither gains nor losses stays undefined.
func ComputeRSI(prices []float64, window int) (model.RSISeries, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	out := make(model.RSISeries, len(prices))
	if len(prices) <= window {
		return out, nil
	}

	// gains[0] and losses[0] stay zero but are never inside a full window.
	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	for i := window; i < len(prices); i++ {
		avgGain, err := CalculateSMA(gains[:i+1], window)
		if err != nil {
			return nil, err
		}
		avgLoss, err := CalculateSMA(losses[:i+1], window)
		if err != nil {
			return nil, err
		}
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) model.RSIValue {
	if !isFinite(avgGain) || !isFinite(avgLoss) {
		return model.Undefined
	}
	if avgLoss == 0 {
		if avgGain == 0 {
			return model.Undefined
		}
		return model.Defined(100)
	}
	return model.Defined(100 * avgGain / (avgGain + avgLoss))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
