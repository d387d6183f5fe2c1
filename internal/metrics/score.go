package metrics

const (
	roiScoreCap           = 200.0
	rolloutScoreMinimum   = 60.0
	minSuccessProbability = 10.0
	maxSuccessProbability = 95.0
	standardProbability   = 50.0
)

func riskBonus(risk float64) float64 {
	switch {
	case risk < 30:
		return 20
	case risk < 60:
		return 10
	default:
		return 0
	}
}

func proInnovationScore(roi, confidence, risk float64) float64 {
	score := clamp(roi, 0, roiScoreCap)/4 + confidence/2 + riskBonus(risk)
	return clamp(score, 0, 100)
}

func proSuccessProbability(confidence, roi, risk float64) float64 {
	p := 50 + confidence*0.3 + roi*0.05 - risk*0.2
	return clamp(p, minSuccessProbability, maxSuccessProbability)
}

// Standard tops out at 80.
func standardInnovationScore(roi float64) float64 {
	score := 40.0
	if roi > 0 {
		score = 60
	}
	if roi > 100 {
		score += 20
	}
	return score
}
