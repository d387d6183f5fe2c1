package metrics

const (
	confidenceQuestions = 8
	confidenceUnknown   = 50.0
)

func answerWeight(a Answer) float64 {
	switch a {
	case AnswerYes:
		return 12.5
	case AnswerPartial:
		return 6.25
	default:
		return 0
	}
}

// ConfidenceScore converts the checklist answers into a 0-100 score. A nil
// list scores 50; answers past the eighth are ignored.
func ConfidenceScore(answers []Answer) float64 {
	if answers == nil {
		return confidenceUnknown
	}
	score := 0.0
	for i, a := range answers {
		if i == confidenceQuestions {
			break
		}
		score += answerWeight(a)
	}
	return score
}
