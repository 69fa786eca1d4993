package indicator

import "math"

const (
	// NotApplicable labels comparisons that cannot be made.
	NotApplicable = "N/A"
)

// Returns calculates the simple period-over-period returns of the provided data.
func Returns(data []float64) []float64 {
	if len(data) < 2 {
		return []float64{}
	}

	returns := make([]float64, 0, len(data)-1)
	for idx := 1; idx < len(data); idx++ {
		if data[idx-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (data[idx]-data[idx-1])/data[idx-1])
	}

	return returns
}

// PearsonCorrelation calculates the pearson correlation coefficient of the provided
// series. Mismatched or empty series are undefined; zero variance reads 0.
func PearsonCorrelation(x []float64, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) == 0 {
		return null, false
	}

	n := float64(len(x))
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for idx := range x {
		sumX += x[idx]
		sumY += y[idx]
		sumXY += x[idx] * y[idx]
		sumX2 += x[idx] * x[idx]
		sumY2 += y[idx] * y[idx]
	}

	numerator := n*sumXY - sumX*sumY
	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denominator == 0 || math.IsNaN(denominator) {
		return 0, true
	}

	return numerator / denominator, true
}

// CorrelationInterpretation describes the provided correlation coefficient.
func CorrelationInterpretation(coefficient float64) string {
	switch {
	case IsNull(coefficient):
		return NotApplicable
	case coefficient > 0.7:
		return "Strongly Positive"
	case coefficient > 0.3:
		return "Moderately Positive"
	case coefficient < -0.7:
		return "Strongly Negative"
	case coefficient < -0.3:
		return "Moderately Negative"
	default:
		return "Weak / No Correlation"
	}
}

// RelativePerformance compares the percentage change of the last window closes of
// a series against a reference series. Differences beyond the threshold percentage
// are labelled as out or under performance.
func RelativePerformance(closes []float64, reference []float64, window int, threshold float64) string {
	if window < 2 || len(closes) < window || len(reference) < window {
		return NotApplicable
	}

	perf := func(data []float64) float64 {
		recent := data[len(data)-window:]
		return (recent[len(recent)-1]/recent[0] - 1) * 100
	}

	diff := perf(closes) - perf(reference)
	switch {
	case diff > threshold:
		return "Outperforming BTC"
	case diff < -threshold:
		return "Underperforming BTC"
	default:
		return "Neutral"
	}
}
