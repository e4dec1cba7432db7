package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/synaptica-ai/diagnostic/pkg/common/logger"
	"github.com/synaptica-ai/diagnostic/pkg/ml/linear"
)

const defaultThreshold = 0.5

var ErrModelNotFound = errors.New("model file not found")

// Artifact is the on-disk model package: classifier, decision threshold and
// the preprocessors fitted alongside it.
type Artifact struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Model   struct {
		Type         string         `json:"type"`
		FeatureNames []string       `json:"feature_names"`
		Weights      linear.Weights `json:"weights"`
	} `json:"model"`
	Threshold     *float64 `json:"threshold,omitempty"`
	Preprocessors struct {
		LabelEncoders map[string]LabelEncoder `json:"label_encoders,omitempty"`
		Scaler        *StandardScaler         `json:"scaler,omitempty"`
	} `json:"preprocessors"`
}

// ModelPackage is the loaded, validated artifact. It is never mutated after
// Load returns and may be shared by any number of goroutines.
type ModelPackage struct {
	Name         string
	Version      string
	Classifier   Classifier
	Threshold    float64
	Preprocessor *Preprocessor
}

func Load(path string) (*ModelPackage, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return nil, fmt.Errorf("decoding model file %s: %w", path, err)
	}
	return FromArtifact(artifact)
}

func FromArtifact(artifact Artifact) (*ModelPackage, error) {
	if names := artifact.Model.FeatureNames; len(names) > 0 {
		if len(names) != len(FeatureOrder) {
			return nil, fmt.Errorf("artifact declares %d features, expected %d", len(names), len(FeatureOrder))
		}
		for i, name := range names {
			if name != FeatureOrder[i] {
				return nil, fmt.Errorf("artifact feature %d is %q, expected %q", i, name, FeatureOrder[i])
			}
		}
	}

	classifier, err := NewClassifier(artifact.Model.Type, artifact.Model.Weights)
	if err != nil {
		return nil, err
	}

	threshold := defaultThreshold
	if artifact.Threshold != nil {
		threshold = *artifact.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside [0, 1]", threshold)
	}

	pre, err := NewPreprocessor(artifact.Preprocessors.LabelEncoders, artifact.Preprocessors.Scaler)
	if err != nil {
		return nil, err
	}

	return &ModelPackage{
		Name:         artifact.Name,
		Version:      artifact.Version,
		Classifier:   classifier,
		Threshold:    threshold,
		Preprocessor: pre,
	}, nil
}

var (
	defaultEngine    *Engine
	defaultEngineErr error
	defaultOnce      sync.Once
)

// Default loads the model package at path on first use and returns the same
// engine to every later caller. Later paths are ignored.
func Default(path string) (*Engine, error) {
	defaultOnce.Do(func() {
		pkg, err := Load(path)
		if err != nil {
			defaultEngineErr = err
			return
		}
		defaultEngine = NewEngine(pkg)
		logger.Log.WithFields(map[string]interface{}{
			"path":      path,
			"model":     pkg.Name,
			"version":   pkg.Version,
			"threshold": pkg.Threshold,
			"scaled":    pkg.Preprocessor.Scaled(),
		}).Info("Model package loaded")
	})
	return defaultEngine, defaultEngineErr
}
