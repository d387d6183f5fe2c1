package metrics

import (
	"strings"
	"testing"
)

func TestValidateAcceptsCompleteInputs(t *testing.T) {
	in := costReductionInputs()
	in.ConfidenceAnswers = repeatAnswer(AnswerPartial, 8)
	in.Risks = uniformRisk(RiskMedium)
	if err := Validate(in); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	in := ProjectInputs{
		Mode:              "enterprise",
		ValueType:         "barter",
		ConfidenceAnswers: []Answer{"sim", "talvez"},
		Risks:             &RiskAssessment{StrategicAlignment: "extreme"},
	}
	err := Validate(in)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{`unknown mode "enterprise"`, `unknown value type "barter"`, `"talvez"`, `"extreme"`} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestValidateRequiresProDuration(t *testing.T) {
	in := costReductionInputs()
	in.Costs.DurationMonths = 0
	if err := Validate(in); err == nil || !strings.Contains(err.Error(), "durationMonths") {
		t.Fatalf("expected duration error, got %v", err)
	}
}
