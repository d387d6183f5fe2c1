package reports

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joelkehle/metria/internal/metrics"
	"github.com/joelkehle/metria/internal/models"
)

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func pct(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

var valueTypeNames = map[metrics.ValueType]string{
	metrics.ValueCostReduction:     "Cost reduction",
	metrics.ValueCostAvoidance:     "Cost avoidance",
	metrics.ValueRevenueIncrease:   "Revenue increase",
	metrics.ValueNewRevenue:        "New revenue",
	metrics.ValueRevenueGeneration: "Revenue generation",
}

// Markdown renders a saved report for reading or PDF export.
func Markdown(rep models.SavedReport) string {
	in, m := rep.Data, rep.Metrics
	var b strings.Builder

	title := strings.TrimSpace(in.ProjectName)
	if title == "" {
		title = "Untitled project"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if in.AssociatedCompany != "" {
		fmt.Fprintf(&b, "**Company:** %s  \n", in.AssociatedCompany)
	}
	if in.StartupName != "" {
		fmt.Fprintf(&b, "**Startup partner:** %s  \n", in.StartupName)
	}
	mode := "Standard"
	if in.Mode == metrics.ModePro {
		mode = "Pro"
	}
	fmt.Fprintf(&b, "**Model:** %s  \n", mode)
	vt := valueTypeNames[in.ValueType]
	if vt == "" {
		vt = string(in.ValueType)
	}
	fmt.Fprintf(&b, "**Value type:** %s  \n", vt)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", rep.CreatedAt.Format("January 2, 2006 15:04 MST"))

	if rep.Warning != "" {
		fmt.Fprintf(&b, "> %s\n\n", rep.Warning)
	}

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Innovation score | %s / 100 |\n", decimal.NewFromFloat(m.InnovationScore).StringFixed(0))
	fmt.Fprintf(&b, "| Success probability | %s%% |\n", decimal.NewFromFloat(m.SuccessProbability).StringFixed(1))
	fmt.Fprintf(&b, "| Total cost | %s |\n", money(m.TotalCost))
	fmt.Fprintf(&b, "| Economic value (VE) | %s |\n", money(m.EconomicValue))
	fmt.Fprintf(&b, "| Economic gain (GE) | %s |\n", money(m.EconomicGain))
	fmt.Fprintf(&b, "| ROI | %s |\n", pct(m.Scenarios.Realistic.ROI))
	if m.PaybackPeriodMonths == metrics.PaybackUndefined {
		b.WriteString("| Payback | undefined |\n")
	} else {
		fmt.Fprintf(&b, "| Payback | %s months |\n", decimal.NewFromFloat(m.PaybackPeriodMonths).StringFixed(1))
	}
	if in.Mode == metrics.ModePro {
		fmt.Fprintf(&b, "| Confidence (ICV) | %s |\n", pct(m.ConfidenceScore))
		fmt.Fprintf(&b, "| Risk score | %s / 100 |\n", decimal.NewFromFloat(m.RiskScore).StringFixed(2))
		fmt.Fprintf(&b, "| Scale cost-benefit | %sx |\n", decimal.NewFromFloat(m.CostBenefitRatio).StringFixed(2))
	}
	b.WriteString("\n")

	b.WriteString("## Scenarios\n\n")
	b.WriteString("| Scenario | Revenue | Cost | Net gain | ROI |\n|---|---|---|---|---|\n")
	for _, s := range []metrics.ScenarioMetrics{m.Scenarios.Pessimistic, m.Scenarios.Realistic, m.Scenarios.Optimistic} {
		if s.Label == metrics.LabelNotApplicable {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", s.Label, money(s.Revenue), money(s.TotalCost), money(s.NetProfit), pct(s.ROI))
	}
	b.WriteString("\n")

	if len(m.RolloutProjections) > 0 {
		b.WriteString("## Rollout Projection\n\n")
		b.WriteString("| Year | Revenue | Cost | Profit | Accumulated |\n|---|---|---|---|---|\n")
		for _, y := range m.RolloutProjections {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", y.Year, money(y.Revenue), money(y.Cost), money(y.Profit), money(y.AccumulatedProfit))
		}
		b.WriteString("\n")
	}

	if a := rep.Analysis; a != nil {
		b.WriteString("## AI Analysis\n\n")
		fmt.Fprintf(&b, "**Market fit:** %s / 10\n\n", decimal.NewFromFloat(a.MarketFitScore).StringFixed(1))
		fmt.Fprintf(&b, "### Strategy\n\n%s\n\n", a.StrategicAnalysis)
		fmt.Fprintf(&b, "### Risks\n\n%s\n\n", a.RiskAssessment)
		fmt.Fprintf(&b, "### Market Viability\n\n%s\n\n", a.MarketViability)
		b.WriteString("### Recommendations\n\n")
		for i, r := range a.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r)
		}
		b.WriteString("\n")
	}
	return b.String()
}
