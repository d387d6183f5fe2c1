package metrics

// ValueDriver yields the (unit value, volume) pair every value formula starts from.
type ValueDriver interface {
	UnitValue() float64
	Volume() float64
}

type CostReduction struct {
	CurrentUnitCost float64
	NewUnitCost     float64
	VolumeTraded    float64
}

func (v CostReduction) UnitValue() float64 { return v.CurrentUnitCost - v.NewUnitCost }
func (v CostReduction) Volume() float64    { return v.VolumeTraded }

type RevenueIncrease struct {
	TicketPrice     float64
	NewTicketPrice  float64
	AdditionalSales float64
	// TicketDelta values each sale at the price increase when both prices are set.
	TicketDelta bool
}

func (v RevenueIncrease) UnitValue() float64 {
	if v.TicketDelta && v.TicketPrice != 0 && v.NewTicketPrice != 0 {
		if delta := v.NewTicketPrice - v.TicketPrice; delta > 0 {
			return delta
		}
	}
	return v.TicketPrice
}

func (v RevenueIncrease) Volume() float64 { return v.AdditionalSales }

type NewRevenue struct {
	ProductPrice float64
	SalesVolume  float64
}

func (v NewRevenue) UnitValue() float64 { return v.ProductPrice }
func (v NewRevenue) Volume() float64    { return v.SalesVolume }

// CostAvoidance treats the predicted cost as a single avoided event.
type CostAvoidance struct {
	FuturePredictableCost float64
}

func (v CostAvoidance) UnitValue() float64 { return v.FuturePredictableCost }
func (v CostAvoidance) Volume() float64    { return 1 }

type noValue struct{}

func (noValue) UnitValue() float64 { return 0 }
func (noValue) Volume() float64    { return 0 }

func DriverFor(vt ValueType, m OperationalMetrics, ticketDelta bool) ValueDriver {
	switch vt {
	case ValueCostReduction:
		return CostReduction{CurrentUnitCost: m.CurrentUnitCost, NewUnitCost: m.NewUnitCost, VolumeTraded: m.VolumeTraded}
	case ValueRevenueIncrease:
		return RevenueIncrease{TicketPrice: m.TicketPrice, NewTicketPrice: m.NewTicketPrice, AdditionalSales: m.AdditionalSales, TicketDelta: ticketDelta}
	case ValueNewRevenue:
		return NewRevenue{ProductPrice: m.ProductPrice, SalesVolume: m.SalesVolume}
	case ValueCostAvoidance:
		return CostAvoidance{FuturePredictableCost: m.FuturePredictableCost}
	default:
		return noValue{}
	}
}

func economicValue(d ValueDriver, volume, efficiency, durationMonths float64) float64 {
	return d.UnitValue() * volume * efficiency * durationMonths
}

func roiPercent(gain, cost float64) float64 {
	if cost > 0 {
		return gain / cost * 100
	}
	return 0
}

func perMonth(total, durationMonths float64) float64 {
	if durationMonths <= 0 {
		return 0
	}
	return total / durationMonths
}

// paybackMonths is undefined when the project returns nothing or loses value each month.
func paybackMonths(cost, value, durationMonths float64) float64 {
	monthly := perMonth(value, durationMonths)
	if monthly <= 0 {
		return PaybackUndefined
	}
	return cost / monthly
}
