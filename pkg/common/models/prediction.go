package models

import "math"

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceFor bands the distance between a probability and the decision threshold.
func ConfidenceFor(probability, threshold float64) Confidence {
	distance := math.Abs(probability - threshold)
	switch {
	case distance > 0.2:
		return ConfidenceHigh
	case distance > 0.1:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

type PredictionResult struct {
	HasDiabetes   bool       `json:"has_diabetes"`
	Probability   float64    `json:"probability"`
	ThresholdUsed float64    `json:"threshold_used"`
	Confidence    Confidence `json:"confidence"`
}

// NewPredictionResult applies the decision rule: a probability equal to the threshold is positive.
func NewPredictionResult(probability, threshold float64) PredictionResult {
	return PredictionResult{
		HasDiabetes:   probability >= threshold,
		Probability:   probability,
		ThresholdUsed: threshold,
		Confidence:    ConfidenceFor(probability, threshold),
	}
}

type DiagnosticReportResponse struct {
	Prediction       PredictionResult `json:"prediction"`
	DiagnosticReport string           `json:"diagnostic_report"`
}
