package analytics

// RiskTier is the display label for an anemia risk probability.
type RiskTier string

const (
	RiskHigh     RiskTier = "High Risk"
	RiskModerate RiskTier = "Moderate Risk"
	RiskLow      RiskTier = "Low Risk"
	RiskVeryLow  RiskTier = "Very Low Risk"
)

// ClassifyRisk maps a model probability to a tier. Thresholds are exclusive
// and checked top down, so exactly 0.8 is Moderate, exactly 0.6 is Low and
// exactly 0.4 is Very Low.
func ClassifyRisk(probability float64) RiskTier {
	switch {
	case probability > 0.8:
		return RiskHigh
	case probability > 0.6:
		return RiskModerate
	case probability > 0.4:
		return RiskLow
	default:
		return RiskVeryLow
	}
}
