package analysis

import (
	"fmt"
	"strings"

	"github.com/joelkehle/metria/internal/metrics"
)

func BuildPrompt(in metrics.ProjectInputs, m metrics.CalculatedMetrics) string {
	pro := in.Mode == metrics.ModePro
	var b strings.Builder

	model := "Standard"
	if pro {
		model = "Advanced methodology (Pro)"
	}
	fmt.Fprintf(&b, "Analyse the following innovation project using the data provided.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", orUnnamed(in.ProjectName))
	if in.AssociatedCompany != "" {
		fmt.Fprintf(&b, "Company: %s\n", in.AssociatedCompany)
	}
	if in.StartupName != "" {
		fmt.Fprintf(&b, "Startup partner: %s\n", in.StartupName)
	}
	fmt.Fprintf(&b, "Analysis model: %s\n", model)
	fmt.Fprintf(&b, "Innovation score: %g/100\n", m.InnovationScore)
	fmt.Fprintf(&b, "Success probability: %g%%\n", m.SuccessProbability)
	fmt.Fprintf(&b, "Confidence (ICV): %g%%\n\n", m.ConfidenceScore)

	roi := m.Scenarios.Realistic.ROI
	if pro {
		fmt.Fprintf(&b, "Total cost (POC/implementation): %.2f\n", m.TotalCost)
		fmt.Fprintf(&b, "Value type: %s\n", in.ValueType)
		fmt.Fprintf(&b, "Economic value generated (VE): %.2f\n", m.EconomicValue)
		fmt.Fprintf(&b, "Economic gain (GE): %.2f\n", m.EconomicGain)
		fmt.Fprintf(&b, "Project ROI: %g%% (%gx)\n", roi, roi/100)
		fmt.Fprintf(&b, "Scale cost-benefit: %gx\n", m.CostBenefitRatio)
		fmt.Fprintf(&b, "Risk score: %g/100\n", m.RiskScore)
		fmt.Fprintf(&b, "Direct cost: %.2f\n", in.Costs.DirectCost)
		fmt.Fprintf(&b, "Duration: %g months\n", in.Costs.DurationMonths)
	} else {
		fmt.Fprintf(&b, "Total cost: %.2f\n", m.TotalCost)
		fmt.Fprintf(&b, "Value type: %s\n", in.ValueType)
		fmt.Fprintf(&b, "Economic value generated: %.2f\n", m.EconomicValue)
		fmt.Fprintf(&b, "Realistic ROI: %g%%\n", roi)
		if m.PaybackPeriodMonths > 0 {
			fmt.Fprintf(&b, "Payback: %g months\n", m.PaybackPeriodMonths)
		} else {
			b.WriteString("Payback: undefined or long term\n")
		}
	}

	focusRisk := "the cost structure and expected payback"
	focusMarket := "the gap between the expected value and the cost of the pilot"
	if pro {
		focusRisk = "the economic viability (VE/GE)"
		focusMarket = fmt.Sprintf("the cost versus benefit relationship and the value type (%s)", in.ValueType)
	}
	b.WriteString("\nReturn a JSON object with these fields:\n")
	b.WriteString("- strategicAnalysis: a brief strategic analysis (2-3 sentences).\n")
	fmt.Fprintf(&b, "- riskAssessment: the main risks, considering %s.\n", focusRisk)
	fmt.Fprintf(&b, "- marketViability: market viability, focusing on %s.\n", focusMarket)
	b.WriteString("- recommendations: exactly 3 tactical recommendations to improve the innovation score.\n")
	b.WriteString("- marketFitScore: a number from 0 to 10 rating how coherent the numbers are.\n")
	return b.String()
}

func orUnnamed(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unnamed project)"
	}
	return s
}
