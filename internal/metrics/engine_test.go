package metrics

import (
	"encoding/json"
	"math"
	"reflect"
	"sync"
	"testing"
)

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func costReductionInputs() ProjectInputs {
	return ProjectInputs{
		Mode:      ModePro,
		ValueType: ValueCostReduction,
		Costs: Costs{
			DirectCost:     1000,
			LaborRate:      50,
			LaborHours:     10,
			DurationMonths: 3,
		},
		Operational: OperationalMetrics{
			CurrentUnitCost: 100,
			NewUnitCost:     80,
			VolumeTraded:    50,
		},
	}
}

func TestProCostReductionExample(t *testing.T) {
	m := Compute(costReductionInputs())

	if m.TotalCost != 2500 {
		t.Fatalf("unexpected total cost: got=%f want=2500", m.TotalCost)
	}
	if m.EconomicValue != 3000 {
		t.Fatalf("unexpected economic value: got=%f want=3000", m.EconomicValue)
	}
	if m.EconomicGain != 500 {
		t.Fatalf("unexpected economic gain: got=%f want=500", m.EconomicGain)
	}
	if m.Scenarios.Realistic.ROI != 20 {
		t.Fatalf("unexpected realistic roi: got=%f want=20", m.Scenarios.Realistic.ROI)
	}
	if m.Scenarios.Pessimistic.Revenue != 2100 || m.Scenarios.Pessimistic.ROI != -16 {
		t.Fatalf("unexpected pessimistic scenario: %+v", m.Scenarios.Pessimistic)
	}
	if m.Scenarios.Optimistic.Revenue != 3900 || m.Scenarios.Optimistic.ROI != 56 {
		t.Fatalf("unexpected optimistic scenario: %+v", m.Scenarios.Optimistic)
	}
	for _, s := range []ScenarioMetrics{m.Scenarios.Pessimistic, m.Scenarios.Realistic, m.Scenarios.Optimistic} {
		if s.TotalCost != 2500 {
			t.Fatalf("scenario %s cost drifted: %f", s.Label, s.TotalCost)
		}
	}
	if m.ConfidenceScore != 50 {
		t.Fatalf("unexpected confidence score: got=%f want=50", m.ConfidenceScore)
	}
	if m.RiskScore != 0 {
		t.Fatalf("unexpected risk score: got=%f want=0", m.RiskScore)
	}
	// 20/4 + 50/2 + 20
	if m.InnovationScore != 50 {
		t.Fatalf("unexpected innovation score: got=%f want=50", m.InnovationScore)
	}
	// 50 + 50*0.3 + 20*0.05
	if m.SuccessProbability != 66 {
		t.Fatalf("unexpected success probability: got=%f want=66", m.SuccessProbability)
	}
	if m.PaybackPeriodMonths != 2.5 {
		t.Fatalf("unexpected payback: got=%f want=2.5", m.PaybackPeriodMonths)
	}
	// annual value 12000 against 2500*4
	if m.CostBenefitRatio != 0.2 {
		t.Fatalf("unexpected cost-benefit ratio: got=%f want=0.2", m.CostBenefitRatio)
	}
	if len(m.RolloutProjections) != 0 {
		t.Fatalf("expected no rollout below score threshold, got %d years", len(m.RolloutProjections))
	}
}

func TestZeroCostYieldsZeroROI(t *testing.T) {
	for _, mode := range []Mode{ModePro, ModeStandard} {
		in := costReductionInputs()
		in.Mode = mode
		in.Costs = Costs{DurationMonths: 3}
		m := Compute(in)
		for _, s := range []ScenarioMetrics{m.Scenarios.Pessimistic, m.Scenarios.Realistic, m.Scenarios.Optimistic} {
			if s.ROI != 0 {
				t.Fatalf("%s: expected zero roi for %s, got %f", mode, s.Label, s.ROI)
			}
		}
	}
}

func TestZeroValueYieldsUndefinedPayback(t *testing.T) {
	for _, mode := range []Mode{ModePro, ModeStandard} {
		in := costReductionInputs()
		in.Mode = mode
		in.Operational = OperationalMetrics{}
		m := Compute(in)
		if m.EconomicValue != 0 {
			t.Fatalf("%s: expected zero value, got %f", mode, m.EconomicValue)
		}
		if m.PaybackPeriodMonths != PaybackUndefined {
			t.Fatalf("%s: expected undefined payback, got %f", mode, m.PaybackPeriodMonths)
		}
	}
}

func TestNegativeValueYieldsUndefinedPayback(t *testing.T) {
	in := costReductionInputs()
	in.Operational.CurrentUnitCost = 80
	in.Operational.NewUnitCost = 100
	m := Compute(in)
	if m.EconomicValue != -3000 {
		t.Fatalf("expected negative value, got %f", m.EconomicValue)
	}
	if m.PaybackPeriodMonths != PaybackUndefined {
		t.Fatalf("expected undefined payback for a loss-making project, got %f", m.PaybackPeriodMonths)
	}
	if m.Scenarios.Realistic.ROI != -220 {
		t.Fatalf("expected roi -220, got %f", m.Scenarios.Realistic.ROI)
	}
}

func TestDegenerateInputsStayFinite(t *testing.T) {
	cases := []ProjectInputs{
		{Mode: ModePro, ValueType: ValueNewRevenue},
		{Mode: ModePro, ValueType: ValueNewRevenue, Costs: Costs{DirectCost: 10, ScaleDurationMonths: 6}, Operational: OperationalMetrics{ProductPrice: 5, SalesVolume: 3}},
		{Mode: ModePro, ValueType: ValueCostAvoidance, Costs: Costs{DirectCost: -50, DurationMonths: 2}},
		{Mode: ModeStandard, ValueType: ValueCostAvoidance},
		{Mode: "bogus", ValueType: "bogus"},
	}
	for i, in := range cases {
		m := Compute(in)
		if _, err := json.Marshal(m); err != nil {
			t.Fatalf("case %d: metrics not encodable: %v", i, err)
		}
		if math.IsNaN(m.PaybackPeriodMonths) || math.IsInf(m.CostBenefitRatio, 0) {
			t.Fatalf("case %d: non-finite output %+v", i, m)
		}
	}
}

func TestProScoreBounds(t *testing.T) {
	in := costReductionInputs()
	in.Costs = Costs{DirectCost: 1, DurationMonths: 3}
	in.Operational.VolumeTraded = 1e9
	m := Compute(in)
	if m.InnovationScore > 100 || m.InnovationScore < 0 {
		t.Fatalf("innovation score out of range: %f", m.InnovationScore)
	}
	if m.SuccessProbability != 95 {
		t.Fatalf("expected probability clamped at 95, got %f", m.SuccessProbability)
	}

	in.Operational = OperationalMetrics{CurrentUnitCost: 0, NewUnitCost: 1e6, VolumeTraded: 1e6}
	in.Risks = uniformRisk(RiskHigh)
	in.ConfidenceAnswers = []Answer{}
	m = Compute(in)
	if m.InnovationScore != 0 {
		t.Fatalf("expected innovation score floor 0, got %f", m.InnovationScore)
	}
	if m.SuccessProbability != 10 {
		t.Fatalf("expected probability clamped at 10, got %f", m.SuccessProbability)
	}
}

func TestRolloutWhenScoreQualifies(t *testing.T) {
	in := ProjectInputs{
		Mode:              ModePro,
		ValueType:         ValueCostReduction,
		Costs:             Costs{DirectCost: 1000, DurationMonths: 3},
		Operational:       OperationalMetrics{CurrentUnitCost: 30, NewUnitCost: 10, VolumeTraded: 1000},
		ConfidenceAnswers: []Answer{"sim", "sim", "sim", "sim", "sim", "sim", "sim", "sim"},
	}
	m := Compute(in)
	if m.InnovationScore != 100 {
		t.Fatalf("unexpected innovation score: got=%f want=100", m.InnovationScore)
	}
	if len(m.RolloutProjections) != 5 {
		t.Fatalf("expected 5 rollout years, got %d", len(m.RolloutProjections))
	}
	first := m.RolloutProjections[0]
	if first.Revenue != 240000 || first.Cost != 4000 || first.Profit != 236000 {
		t.Fatalf("unexpected first rollout year: %+v", first)
	}
	second := m.RolloutProjections[1]
	if second.Revenue != 276000 || second.Cost != 4200 {
		t.Fatalf("unexpected second rollout year: %+v", second)
	}
	sum := 0.0
	for i, y := range m.RolloutProjections {
		if y.Year != i+1 {
			t.Fatalf("unexpected year index at %d: %d", i, y.Year)
		}
		sum += y.Profit
		if diff(y.AccumulatedProfit, sum) > 0.001 {
			t.Fatalf("accumulated profit mismatch in year %d: got=%f want=%f", y.Year, y.AccumulatedProfit, sum)
		}
	}
}

func TestRealisticScenarioInputDrivesValueAndScaleCost(t *testing.T) {
	in := costReductionInputs()
	in.Realistic = &ScenarioInput{DirectCost: 500, Volume: 100, Efficiency: 0.5}
	in.Pessimistic = &ScenarioInput{Volume: 40, Efficiency: 0.5}
	m := Compute(in)
	// 20 * 100 * 0.5 * 3
	if m.EconomicValue != 3000 {
		t.Fatalf("unexpected economic value: got=%f want=3000", m.EconomicValue)
	}
	if m.Scenarios.Pessimistic.Revenue != 1200 {
		t.Fatalf("unexpected pessimistic revenue: got=%f want=1200", m.Scenarios.Pessimistic.Revenue)
	}
	// optimistic still derived from the realistic value
	if m.Scenarios.Optimistic.Revenue != 3900 {
		t.Fatalf("unexpected optimistic revenue: got=%f want=3900", m.Scenarios.Optimistic.Revenue)
	}
	// (12000 - 6000) / 6000
	if m.CostBenefitRatio != 1 {
		t.Fatalf("unexpected cost-benefit ratio: got=%f want=1", m.CostBenefitRatio)
	}
}

func TestScaleDurationAnnualisesCost(t *testing.T) {
	in := costReductionInputs()
	in.Costs.ScaleDurationMonths = 12
	m := Compute(in)
	// annual cost 2500/3*12 = 10000, annual value 12000
	if diff(m.CostBenefitRatio, 0.2) > 0.001 {
		t.Fatalf("unexpected cost-benefit ratio: got=%f want=0.2", m.CostBenefitRatio)
	}
}

func TestStandardEngine(t *testing.T) {
	in := ProjectInputs{
		Mode:        ModeStandard,
		ValueType:   ValueNewRevenue,
		Costs:       Costs{DirectCost: 800, Fees: 200, Licenses: 999, OtherExpenses: 999, LaborRate: 10, LaborHours: 10, DurationMonths: 2},
		Operational: OperationalMetrics{ProductPrice: 50, SalesVolume: 30},
		Risks:       uniformRisk(RiskHigh),
	}
	m := Compute(in)
	// 800 + 200 + 10*10*2
	if m.TotalCost != 1200 {
		t.Fatalf("unexpected total cost: got=%f want=1200", m.TotalCost)
	}
	if m.EconomicValue != 3000 {
		t.Fatalf("unexpected economic value: got=%f want=3000", m.EconomicValue)
	}
	if m.Scenarios.Realistic.ROI != 150 {
		t.Fatalf("unexpected roi: got=%f want=150", m.Scenarios.Realistic.ROI)
	}
	if m.InnovationScore != 80 {
		t.Fatalf("unexpected innovation score: got=%f want=80", m.InnovationScore)
	}
	if m.SuccessProbability != 50 {
		t.Fatalf("unexpected success probability: got=%f want=50", m.SuccessProbability)
	}
	if m.ConfidenceScore != 0 || m.RiskScore != 0 || m.CostBenefitRatio != 0 {
		t.Fatalf("standard metrics should not model confidence, risk or scale: %+v", m)
	}
	if m.Scenarios.Pessimistic.Label != LabelNotApplicable || m.Scenarios.Optimistic.Revenue != 0 {
		t.Fatalf("unexpected standard sensitivity scenarios: %+v", m.Scenarios)
	}
	// 1200 / 1500
	if m.PaybackPeriodMonths != 0.8 {
		t.Fatalf("unexpected payback: got=%f want=0.8", m.PaybackPeriodMonths)
	}
	if m.RolloutProjections != nil {
		t.Fatalf("standard should never project a rollout")
	}
}

func TestStandardInnovationScoreTiers(t *testing.T) {
	cases := []struct {
		roi  float64
		want float64
	}{
		{roi: -10, want: 40},
		{roi: 0, want: 40},
		{roi: 20, want: 60},
		{roi: 100, want: 60},
		{roi: 101, want: 80},
	}
	for _, c := range cases {
		if got := standardInnovationScore(c.roi); got != c.want {
			t.Fatalf("roi=%f: got=%f want=%f", c.roi, got, c.want)
		}
	}
}

func TestStandardDefaultsDurationToOneMonth(t *testing.T) {
	in := ProjectInputs{
		Mode:        ModeStandard,
		ValueType:   ValueCostAvoidance,
		Costs:       Costs{DirectCost: 100, LaborRate: 10, LaborHours: 5},
		Operational: OperationalMetrics{FuturePredictableCost: 300},
	}
	m := Compute(in)
	if m.TotalCost != 150 || m.EconomicValue != 300 {
		t.Fatalf("unexpected cost/value with default duration: %+v", m)
	}
	if m.PaybackPeriodMonths != 0.5 {
		t.Fatalf("unexpected payback: got=%f want=0.5", m.PaybackPeriodMonths)
	}
}

func TestProCostsIncludeEveryLineItem(t *testing.T) {
	c := Costs{
		DirectCost:       100,
		Fees:             10,
		Licenses:         20,
		ExternalServices: 30,
		Infrastructure:   40,
		LaborRate:        5,
		LaborHours:       2,
		OtherExpenses:    7,
		DurationMonths:   4,
	}
	got := proCosts(c)
	if got.Direct != 200 || got.Indirect != 68 || got.Total != 268 {
		t.Fatalf("unexpected pro costs: %+v", got)
	}
	neg := proCosts(Costs{DirectCost: -10})
	if neg.Total != -10 {
		t.Fatalf("negative costs should propagate, got %+v", neg)
	}
}

func TestComputeIsSafeForConcurrentUse(t *testing.T) {
	in := costReductionInputs()
	in.ConfidenceAnswers = []Answer{"sim", "parcial"}
	in.Risks = uniformRisk(RiskMedium)
	want := Compute(in)

	var wg sync.WaitGroup
	errs := make(chan CalculatedMetrics, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Compute(in); !reflect.DeepEqual(got, want) {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("non-deterministic result: %+v", got)
	}
}
