package metrics

import (
	"math"

	"github.com/shopspring/decimal"
)

func round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

func money(x float64) float64 { return round(x, 2) }

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func roundScenario(s ScenarioMetrics) ScenarioMetrics {
	return ScenarioMetrics{
		ROI:       money(s.ROI),
		NetProfit: money(s.NetProfit),
		Revenue:   money(s.Revenue),
		TotalCost: money(s.TotalCost),
		Label:     s.Label,
	}
}
