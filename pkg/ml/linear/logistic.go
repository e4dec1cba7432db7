package linear

import (
	"fmt"
	"math"
)

type Weights struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

// Validate checks the weights against the width of the feature vector they will score.
func (w Weights) Validate(featureCount int) error {
	if len(w.Coefficients) != featureCount {
		return fmt.Errorf("expected %d coefficients, got %d", featureCount, len(w.Coefficients))
	}
	for i, c := range w.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	return nil
}

// Decision is the raw linear margin w·x + b.
func Decision(weights Weights, sample []float64) float64 {
	return dot(weights.Coefficients, sample) + weights.Bias
}

// Predict is the logistic probability of the positive class.
func Predict(weights Weights, sample []float64) float64 {
	return sigmoid(Decision(weights, sample))
}

// Label is the hard {0, 1} decision of a linear separator.
func Label(weights Weights, sample []float64) int {
	if Decision(weights, sample) >= 0 {
		return 1
	}
	return 0
}

// Score clamps the raw margin into [0, 1] for regressors trained directly on the label.
func Score(weights Weights, sample []float64) float64 {
	return math.Min(1, math.Max(0, Decision(weights, sample)))
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights) && i < len(sample); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
