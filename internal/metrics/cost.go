package metrics

type CostBreakdown struct {
	Direct   float64
	Indirect float64
	Total    float64
}

func proCosts(c Costs) CostBreakdown {
	direct := c.DirectCost + c.Fees + c.Licenses + c.ExternalServices + c.Infrastructure
	indirect := c.LaborRate*c.LaborHours*c.DurationMonths + c.OtherExpenses*c.DurationMonths
	return CostBreakdown{Direct: direct, Indirect: indirect, Total: direct + indirect}
}

func standardCosts(c Costs, durationMonths float64) CostBreakdown {
	direct := c.DirectCost + c.Fees
	indirect := c.LaborRate * c.LaborHours * durationMonths
	return CostBreakdown{Direct: direct, Indirect: indirect, Total: direct + indirect}
}
