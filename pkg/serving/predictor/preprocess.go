package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// FeatureOrder is the column order of the training-time feature matrix.
var FeatureOrder = []string{
	"age", "education_level", "income_level",
	"physical_activity_minutes_per_week", "diet_score",
	"family_history_diabetes", "bmi", "waist_to_hip_ratio",
	"systolic_bp", "cholesterol_total", "hdl_cholesterol",
	"ldl_cholesterol", "triglycerides", "glucose_fasting",
	"glucose_postprandial", "insulin_level", "hba1c",
	"diabetes_risk_score",
}

var (
	ErrMissingFeature  = errors.New("missing feature")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidFeature  = errors.New("invalid feature value")
)

// LabelEncoder maps a category to its index in Classes, like scikit-learn's LabelEncoder.
type LabelEncoder struct {
	Classes []string `json:"classes"`
	index   map[string]int
}

func (e *LabelEncoder) build() error {
	if len(e.Classes) == 0 {
		return errors.New("label encoder without classes")
	}
	e.index = make(map[string]int, len(e.Classes))
	for i, class := range e.Classes {
		if _, dup := e.index[class]; dup {
			return fmt.Errorf("duplicate class %q", class)
		}
		e.index[class] = i
	}
	return nil
}

func (e *LabelEncoder) Transform(value string) (float64, error) {
	idx, ok := e.index[value]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownCategory, value)
	}
	return float64(idx), nil
}

// StandardScaler applies (x - mean) / scale column by column.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) validate(width int) error {
	if len(s.Mean) != width || len(s.Scale) != width {
		return fmt.Errorf("scaler expects %d columns, has mean=%d scale=%d", width, len(s.Mean), len(s.Scale))
	}
	return nil
}

func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out
}

// Preprocessor turns a raw patient mapping into the classifier's feature
// matrix. Encoders and scaler are optional; without them raw values are used.
type Preprocessor struct {
	encoders map[string]*LabelEncoder
	scaler   *StandardScaler
}

func NewPreprocessor(encoders map[string]LabelEncoder, scaler *StandardScaler) (*Preprocessor, error) {
	p := &Preprocessor{encoders: make(map[string]*LabelEncoder, len(encoders))}
	known := make(map[string]struct{}, len(FeatureOrder))
	for _, name := range FeatureOrder {
		known[name] = struct{}{}
	}
	for column, enc := range encoders {
		if _, ok := known[column]; !ok {
			continue
		}
		enc := enc
		if err := enc.build(); err != nil {
			return nil, fmt.Errorf("encoder for %s: %w", column, err)
		}
		p.encoders[column] = &enc
	}
	if scaler != nil {
		if err := scaler.validate(len(FeatureOrder)); err != nil {
			return nil, err
		}
		p.scaler = scaler
	}
	return p, nil
}

func (p *Preprocessor) Scaled() bool {
	return p.scaler != nil
}

// Transform returns a single-row matrix with columns in FeatureOrder.
func (p *Preprocessor) Transform(raw map[string]interface{}) ([][]float64, error) {
	row := make([]float64, len(FeatureOrder))
	for i, column := range FeatureOrder {
		value, ok := raw[column]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingFeature, column)
		}
		if enc, ok := p.encoders[column]; ok {
			encoded, err := enc.Transform(fmt.Sprint(value))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", column, err)
			}
			row[i] = encoded
			continue
		}
		number, err := toFloat(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFeature, column, err)
		}
		row[i] = number
	}

	if p.scaler != nil {
		row = p.scaler.Transform(row)
	}
	return [][]float64{row}, nil
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}
