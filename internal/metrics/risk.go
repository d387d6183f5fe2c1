package metrics

func riskWeight(l RiskLevel) float64 {
	switch l {
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 1
	}
}

// RiskScore normalises the qualitative risk answers into 0-100, higher being
// riskier. A missing assessment scores 0.
func RiskScore(r *RiskAssessment) float64 {
	if r == nil {
		return 0
	}
	levels := r.Levels()
	total := 0.0
	for _, l := range levels {
		total += riskWeight(l)
	}
	return total / float64(len(levels)*3) * 100
}
