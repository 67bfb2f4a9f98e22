package analysis

import (
	"math"
	"time"

	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// Indicator engine. Every function here is a pure function of the ordered
// input window: identical input always yields identical output. No smoothing
// state is carried between calls.
//
// Ticks carry close prices only, so the true range degrades to
// |close - prevClose|.
// -----------------------------------------------------------------------------

type Engine struct {
	Period int
}

// -----------------------------------------------------------------------------

func NewEngine(period int) *Engine {
	if period <= 0 {
		period = 14
	}
	return &Engine{Period: period}
}

// -----------------------------------------------------------------------------

// Compute derives all indicators from a history window.
func (e *Engine) Compute(window []models.MTick, now time.Time) models.MIndicators {
	closes := Closes(window)

	upper, middle, lower := Bollinger(closes, 20, 2.0)
	macd, macdSignal := MACD(closes, 12, 26, 9)

	return models.MIndicators{
		RSI:        RSI(closes, e.Period),
		ADX:        ADX(closes, e.Period),
		ATR:        ATR(closes, e.Period),
		BollUpper:  upper,
		BollMiddle: middle,
		BollLower:  lower,
		MACD:       macd,
		MACDSignal: macdSignal,
		ComputedAt: now,
	}
}

// -----------------------------------------------------------------------------

// Closes extracts the close-price series from a tick window.
func Closes(window []models.MTick) []float64 {
	closes := make([]float64, len(window))
	for i, t := range window {
		closes[i] = t.Price
	}
	return closes
}

// -----------------------------------------------------------------------------

// RSI computes the Relative Strength Index with Wilder smoothing. The first
// `period` deltas bootstrap the initial average gain/loss; subsequent deltas
// use avg = (avg*(period-1) + value) / period. Fewer than period+1 samples
// reports 50 (neutral) rather than undefined.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50.0
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	avgGain := wilderSmooth(gains, period)
	avgLoss := wilderSmooth(losses, period)

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// -----------------------------------------------------------------------------

// ATR computes the Average True Range over the degraded true-range series,
// with the same smoothing scheme as RSI. Returns 0 with insufficient history.
func ATR(closes []float64, period int) float64 {
	tr := trueRanges(closes)
	if len(tr) < period {
		return 0.0
	}
	return wilderSmooth(tr, period)
}

// -----------------------------------------------------------------------------

// ADX derives the Average Directional Index from +DM/-DM smoothed the Wilder
// way, divided by ATR, then smoothed again. Reported as 0 when history is
// insufficient.
func ADX(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 0.0
	}

	n := len(closes) - 1
	dmPlus := make([]float64, n)
	dmMinus := make([]float64, n)
	for i := 1; i < len(closes); i++ {
		up := closes[i] - closes[i-1]
		down := closes[i-1] - closes[i]
		if up > down && up > 0 {
			dmPlus[i-1] = up
		}
		if down > up && down > 0 {
			dmMinus[i-1] = down
		}
	}
	tr := trueRanges(closes)

	// Running Wilder averages, collecting a DX sample at every step past the
	// bootstrap window.
	smTR := mean(tr[:period])
	smPlus := mean(dmPlus[:period])
	smMinus := mean(dmMinus[:period])

	var dxValues []float64
	appendDX := func() {
		if smTR == 0 {
			return
		}
		diPlus := 100.0 * smPlus / smTR
		diMinus := 100.0 * smMinus / smTR
		if sum := diPlus + diMinus; sum > 0 {
			dxValues = append(dxValues, 100.0*math.Abs(diPlus-diMinus)/sum)
		}
	}
	appendDX()

	for i := period; i < n; i++ {
		smTR = (smTR*float64(period-1) + tr[i]) / float64(period)
		smPlus = (smPlus*float64(period-1) + dmPlus[i]) / float64(period)
		smMinus = (smMinus*float64(period-1) + dmMinus[i]) / float64(period)
		appendDX()
	}

	if len(dxValues) == 0 {
		return 0.0
	}
	if len(dxValues) < period {
		return mean(dxValues)
	}
	return wilderSmooth(dxValues, period)
}

// -----------------------------------------------------------------------------

// Bollinger computes the upper, middle and lower bands over the last
// `period` closes. Zeroes when under-sampled.
func Bollinger(closes []float64, period int, stdDev float64) (float64, float64, float64) {
	if len(closes) < period {
		return 0, 0, 0
	}

	tail := closes[len(closes)-period:]
	middle := mean(tail)

	varianceSum := 0.0
	for _, v := range tail {
		varianceSum += (v - middle) * (v - middle)
	}
	std := math.Sqrt(varianceSum / float64(period))

	return middle + stdDev*std, middle, middle - stdDev*std
}

// -----------------------------------------------------------------------------

// MACD computes the MACD line and its signal line. Zeroes when the window is
// shorter than the slow period.
func MACD(closes []float64, fast, slow, signal int) (float64, float64) {
	if len(closes) < slow {
		return 0, 0
	}

	fastSeries := emaSeries(closes, fast)
	slowSeries := emaSeries(closes, slow)

	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = fastSeries[i] - slowSeries[i]
	}

	signalSeries := emaSeries(macdSeries, signal)
	return macdSeries[len(macdSeries)-1], signalSeries[len(signalSeries)-1]
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func trueRanges(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	tr := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		tr[i-1] = math.Abs(closes[i] - closes[i-1])
	}
	return tr
}

// wilderSmooth bootstraps from the mean of the first `period` values and
// applies avg = (avg*(period-1) + v) / period to the remainder.
func wilderSmooth(values []float64, period int) float64 {
	avg := mean(values[:period])
	for _, v := range values[period:] {
		avg = (avg*float64(period-1) + v) / float64(period)
	}
	return avg
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	multiplier := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*multiplier + out[i-1]*(1-multiplier)
	}
	return out
}
