package metrics

import "github.com/shopspring/decimal"

const (
	rolloutYears       = 5
	rolloutGrowth      = 0.15
	rolloutInflation   = 0.05
	fallbackCostFactor = 4.0
)

// scaleCost is the annual cost used for the scale stage. It prefers the
// realistic scenario's monthly direct cost, then the annualised POC cost when a
// scale duration is known, then a flat multiple of the POC cost.
func scaleCost(in ProjectInputs, totalCost float64) float64 {
	if in.Realistic != nil {
		return in.Realistic.DirectCost * 12
	}
	if in.Costs.ScaleDurationMonths != 0 {
		return perMonth(totalCost, in.Costs.DurationMonths) * 12
	}
	return totalCost * fallbackCostFactor
}

func costBenefitRatio(annualValue, annualCost float64) float64 {
	if annualCost > 0 {
		return (annualValue - annualCost) / annualCost
	}
	return 0
}

// projectRollout returns five years of revenue growth against cost inflation.
// Yearly figures are rounded to cents and the accumulated profit is the exact
// sum of the rounded profits.
func projectRollout(baseRevenue, baseCost float64) []RolloutYear {
	years := make([]RolloutYear, 0, rolloutYears)
	acc := decimal.Zero
	for y := 1; y <= rolloutYears; y++ {
		step := float64(y - 1)
		revenue := decimal.NewFromFloat(round(baseRevenue*(1+rolloutGrowth*step), 2))
		cost := decimal.NewFromFloat(round(baseCost*(1+rolloutInflation*step), 2))
		profit := revenue.Sub(cost)
		acc = acc.Add(profit)
		years = append(years, RolloutYear{
			Year:              y,
			Revenue:           revenue.InexactFloat64(),
			Cost:              cost.InexactFloat64(),
			Profit:            profit.InexactFloat64(),
			AccumulatedProfit: acc.InexactFloat64(),
		})
	}
	return years
}
