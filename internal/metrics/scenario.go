package metrics

const (
	LabelPessimistic   = "Pessimistic"
	LabelRealistic     = "Realistic"
	LabelOptimistic    = "Optimistic"
	LabelNotApplicable = "N/A"
	pessimisticFactor  = 0.7
	optimisticFactor   = 1.3
)

func scenarioFromValue(label string, value, cost float64) ScenarioMetrics {
	gain := value - cost
	return ScenarioMetrics{
		ROI:       roiPercent(gain, cost),
		NetProfit: gain,
		Revenue:   value,
		TotalCost: cost,
		Label:     label,
	}
}

// sensitivityScenario prices an explicit scenario input against the resolved
// unit value, or scales the realistic value when no input was given. Cost is
// the same across all scenarios.
func sensitivityScenario(label string, d ValueDriver, in *ScenarioInput, realisticValue, factor, cost, durationMonths float64) ScenarioMetrics {
	value := realisticValue * factor
	if in != nil {
		value = economicValue(d, in.Volume, in.Efficiency, durationMonths)
	}
	return scenarioFromValue(label, value, cost)
}

func notApplicableScenario() ScenarioMetrics {
	return ScenarioMetrics{Label: LabelNotApplicable}
}
