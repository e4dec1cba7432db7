package predictor

import (
	"errors"
	"fmt"

	"github.com/synaptica-ai/diagnostic/pkg/common/models"
)

var errEmptyOutput = errors.New("classifier returned no output")

// Engine scores patients against a loaded ModelPackage.
type Engine struct {
	pkg *ModelPackage
}

func NewEngine(pkg *ModelPackage) *Engine {
	return &Engine{pkg: pkg}
}

func (e *Engine) Threshold() float64 {
	return e.pkg.Threshold
}

func (e *Engine) Predict(patient map[string]interface{}) (models.PredictionResult, error) {
	X, err := e.pkg.Preprocessor.Transform(patient)
	if err != nil {
		return models.PredictionResult{}, fmt.Errorf("preprocessing: %w", err)
	}

	probability, err := e.probability(X)
	if err != nil {
		return models.PredictionResult{}, err
	}
	return models.NewPredictionResult(probability, e.pkg.Threshold), nil
}

func (e *Engine) probability(X [][]float64) (float64, error) {
	if proba, ok := e.pkg.Classifier.(ProbabilisticClassifier); ok {
		rows, err := proba.PredictProba(X)
		if err != nil {
			return 0, fmt.Errorf("computing probabilities: %w", err)
		}
		if len(rows) == 0 || len(rows[0]) == 0 {
			return 0, errEmptyOutput
		}
		if len(rows[0]) > 1 {
			return rows[0][1], nil
		}
		return rows[0][0], nil
	}

	labels, err := e.pkg.Classifier.Predict(X)
	if err != nil {
		return 0, fmt.Errorf("predicting label: %w", err)
	}
	if len(labels) == 0 {
		return 0, errEmptyOutput
	}
	if labels[0] != 0 {
		return 1, nil
	}
	return 0, nil
}
