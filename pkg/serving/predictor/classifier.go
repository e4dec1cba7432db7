package predictor

import (
	"fmt"

	"github.com/synaptica-ai/diagnostic/pkg/ml/linear"
)

const (
	TypeLogisticRegression = "logistic_regression"
	TypeLinearScore        = "linear_score"
	TypeLinearSVM          = "linear_svm"
)

// Classifier produces hard {0, 1} labels, one per row.
type Classifier interface {
	Predict(X [][]float64) ([]int, error)
}

// ProbabilisticClassifier also produces class probabilities, one row per
// sample. Rows hold either [negative, positive] or a single positive column.
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(X [][]float64) ([][]float64, error)
}

func NewClassifier(kind string, weights linear.Weights) (Classifier, error) {
	if err := weights.Validate(len(FeatureOrder)); err != nil {
		return nil, fmt.Errorf("%s weights: %w", kind, err)
	}
	switch kind {
	case TypeLogisticRegression, "":
		return &logisticRegression{weights: weights}, nil
	case TypeLinearScore:
		return &linearScore{weights: weights}, nil
	case TypeLinearSVM:
		return &linearSVM{weights: weights}, nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", kind)
	}
}

type logisticRegression struct {
	weights linear.Weights
}

func (m *logisticRegression) Predict(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, row := range X {
		if linear.Predict(m.weights, row) >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

func (m *logisticRegression) PredictProba(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		p := linear.Predict(m.weights, row)
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

type linearScore struct {
	weights linear.Weights
}

func (m *linearScore) Predict(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, row := range X {
		if linear.Score(m.weights, row) >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

func (m *linearScore) PredictProba(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = []float64{linear.Score(m.weights, row)}
	}
	return out, nil
}

// linearSVM has no calibrated probabilities; only labels.
type linearSVM struct {
	weights linear.Weights
}

func (m *linearSVM) Predict(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, row := range X {
		out[i] = linear.Label(m.weights, row)
	}
	return out, nil
}
