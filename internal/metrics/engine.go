package metrics

type Engine interface {
	Compute(in ProjectInputs) CalculatedMetrics
}

var (
	_ Engine = StandardEngine{}
	_ Engine = ProEngine{}
)

func EngineFor(mode Mode) Engine {
	if mode == ModePro {
		return ProEngine{}
	}
	return StandardEngine{}
}

// Compute derives the full metrics record for one set of inputs. It never
// fails: degenerate divisions resolve to zero.
func Compute(in ProjectInputs) CalculatedMetrics {
	return EngineFor(in.Mode).Compute(in)
}

type ProEngine struct{}

func (ProEngine) Compute(in ProjectInputs) CalculatedMetrics {
	duration := in.Costs.DurationMonths
	cost := proCosts(in.Costs).Total
	driver := DriverFor(in.ValueType, in.Operational, true)

	value := economicValue(driver, driver.Volume(), 1, duration)
	if in.Realistic != nil {
		value = economicValue(driver, in.Realistic.Volume, in.Realistic.Efficiency, duration)
	}
	realistic := scenarioFromValue(LabelRealistic, value, cost)
	pessimistic := sensitivityScenario(LabelPessimistic, driver, in.Pessimistic, value, pessimisticFactor, cost, duration)
	optimistic := sensitivityScenario(LabelOptimistic, driver, in.Optimistic, value, optimisticFactor, cost, duration)

	confidence := ConfidenceScore(in.ConfidenceAnswers)
	risk := RiskScore(in.Risks)
	score := proInnovationScore(realistic.ROI, confidence, risk)

	annualValue := perMonth(value, duration) * 12
	annualCost := scaleCost(in, cost)

	out := CalculatedMetrics{
		PaybackPeriodMonths: money(paybackMonths(cost, value, duration)),
		InnovationScore:     round(score, 0),
		SuccessProbability:  round(proSuccessProbability(confidence, realistic.ROI, risk), 1),
		Scenarios: Scenarios{
			Pessimistic: roundScenario(pessimistic),
			Realistic:   roundScenario(realistic),
			Optimistic:  roundScenario(optimistic),
		},
		TotalCost:        money(cost),
		ConfidenceScore:  money(confidence),
		CostBenefitRatio: money(costBenefitRatio(annualValue, annualCost)),
		EconomicValue:    money(value),
		EconomicGain:     money(realistic.NetProfit),
		RiskScore:        money(risk),
	}
	if score >= rolloutScoreMinimum {
		out.RolloutProjections = projectRollout(annualValue, annualCost)
	}
	return out
}

// StandardEngine implements the simplified tier: no scenarios, checklist,
// risk model or rollout.
type StandardEngine struct{}

func (StandardEngine) Compute(in ProjectInputs) CalculatedMetrics {
	duration := in.Costs.DurationMonths
	if duration <= 0 {
		duration = 1
	}
	cost := standardCosts(in.Costs, duration).Total
	driver := DriverFor(in.ValueType, in.Operational, false)
	value := economicValue(driver, driver.Volume(), 1, duration)
	realistic := scenarioFromValue(LabelRealistic, value, cost)

	payback := PaybackUndefined
	if realistic.NetProfit > 0 {
		payback = paybackMonths(cost, value, duration)
	}

	return CalculatedMetrics{
		PaybackPeriodMonths: round(payback, 1),
		InnovationScore:     standardInnovationScore(realistic.ROI),
		SuccessProbability:  standardProbability,
		Scenarios: Scenarios{
			Pessimistic: notApplicableScenario(),
			Realistic:   roundScenario(realistic),
			Optimistic:  notApplicableScenario(),
		},
		TotalCost:     money(cost),
		EconomicValue: money(value),
		EconomicGain:  money(realistic.NetProfit),
	}
}
