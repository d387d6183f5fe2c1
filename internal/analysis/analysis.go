// Package analysis asks an LLM for a qualitative read of computed metrics and
// falls back to fixed text when the provider cannot answer.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/joelkehle/metria/internal/metrics"
	"github.com/joelkehle/metria/internal/models"
)

type Analyzer interface {
	Analyze(ctx context.Context, in metrics.ProjectInputs, m metrics.CalculatedMetrics) (models.Analysis, error)
}

// LLMCaller returns the raw JSON text produced for a prompt.
type LLMCaller interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

const systemPrompt = "You are an innovation portfolio analyst reviewing the business case of a corporate innovation project. Respond with strict JSON only."

// LLMAnalyzer prompts a caller once and parses its answer.
type LLMAnalyzer struct {
	caller LLMCaller
}

func NewLLMAnalyzer(caller LLMCaller) *LLMAnalyzer {
	return &LLMAnalyzer{caller: caller}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, in metrics.ProjectInputs, m metrics.CalculatedMetrics) (models.Analysis, error) {
	raw, err := a.caller.GenerateJSON(ctx, BuildPrompt(in, m))
	if err != nil {
		return models.Analysis{}, err
	}
	return ParseAnalysis(raw)
}

func Fallback() models.Analysis {
	return models.Analysis{
		StrategicAnalysis: "A detailed analysis could not be generated right now. Check the AI provider API key.",
		RiskAssessment:    "Risk estimated from the standard heuristics.",
		MarketViability:   "Analysis unavailable in offline mode.",
		Recommendations: []string{
			"Review the costs.",
			"Validate the value proposition.",
			"Monitor execution.",
		},
		MarketFitScore: 5,
	}
}

// ParseAnalysis decodes a model response, repairing malformed JSON where it
// can, and rejects answers missing any part of the analysis.
func ParseAnalysis(raw string) (models.Analysis, error) {
	clean := stripCodeFences(raw)
	if clean == "" {
		return models.Analysis{}, errors.New("empty response")
	}
	var out models.Analysis
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		repaired, rerr := jsonrepair.RepairJSON(clean)
		if rerr != nil {
			return models.Analysis{}, fmt.Errorf("repair json: %w", rerr)
		}
		out = models.Analysis{}
		if err := json.Unmarshal([]byte(repaired), &out); err != nil {
			return models.Analysis{}, fmt.Errorf("parse analysis: %w", err)
		}
	}
	if err := validate(&out); err != nil {
		return models.Analysis{}, err
	}
	return out, nil
}

func validate(a *models.Analysis) error {
	a.StrategicAnalysis = strings.TrimSpace(a.StrategicAnalysis)
	a.RiskAssessment = strings.TrimSpace(a.RiskAssessment)
	a.MarketViability = strings.TrimSpace(a.MarketViability)
	var missing []string
	if a.StrategicAnalysis == "" {
		missing = append(missing, "strategicAnalysis")
	}
	if a.RiskAssessment == "" {
		missing = append(missing, "riskAssessment")
	}
	if a.MarketViability == "" {
		missing = append(missing, "marketViability")
	}
	recs := a.Recommendations[:0]
	for _, r := range a.Recommendations {
		if r = strings.TrimSpace(r); r != "" {
			recs = append(recs, r)
		}
	}
	a.Recommendations = recs
	if len(recs) == 0 {
		missing = append(missing, "recommendations")
	}
	if len(missing) > 0 {
		return fmt.Errorf("analysis missing %s", strings.Join(missing, ", "))
	}
	if math.IsNaN(a.MarketFitScore) {
		a.MarketFitScore = 0
	}
	a.MarketFitScore = math.Max(0, math.Min(10, a.MarketFitScore))
	return nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
