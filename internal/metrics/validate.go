package metrics

import (
	"errors"
	"fmt"
)

// Validate checks inputs at the form boundary. Compute does not call it and
// accepts anything well-typed.
func Validate(in ProjectInputs) error {
	var errs []error
	switch in.Mode {
	case ModeStandard, ModePro:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", in.Mode))
	}
	switch in.ValueType {
	case ValueCostReduction, ValueCostAvoidance, ValueRevenueIncrease, ValueNewRevenue, ValueRevenueGeneration:
	default:
		errs = append(errs, fmt.Errorf("unknown value type %q", in.ValueType))
	}
	if in.Mode == ModePro && in.Costs.DurationMonths <= 0 {
		errs = append(errs, errors.New("durationMonths must be greater than zero"))
	}
	if len(in.ConfidenceAnswers) > confidenceQuestions {
		errs = append(errs, fmt.Errorf("expected at most %d confidence answers, got %d", confidenceQuestions, len(in.ConfidenceAnswers)))
	}
	for i, a := range in.ConfidenceAnswers {
		switch a {
		case AnswerYes, AnswerPartial, AnswerNo:
		default:
			errs = append(errs, fmt.Errorf("confidence answer %d: unknown value %q", i+1, a))
		}
	}
	if in.Risks != nil {
		for i, l := range in.Risks.Levels() {
			switch l {
			case RiskLow, RiskMedium, RiskHigh:
			default:
				errs = append(errs, fmt.Errorf("risk dimension %d: unknown level %q", i+1, l))
			}
		}
	}
	return errors.Join(errs...)
}
