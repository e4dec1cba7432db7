// Package diagnostic turns patient data into a prediction and a language
// model report, and serves both over HTTP.
package diagnostic

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/synaptica-ai/diagnostic/pkg/common/logger"
	"github.com/synaptica-ai/diagnostic/pkg/common/models"
	"github.com/synaptica-ai/diagnostic/pkg/gateway/middleware"
	"github.com/synaptica-ai/diagnostic/pkg/llm"
	"github.com/synaptica-ai/diagnostic/pkg/observability/metrics"
	"github.com/synaptica-ai/diagnostic/pkg/prompt"
)

const (
	reportTemperature = 0.7
	reportTopP        = 0.9

	modeInvoke = "invoke"
	modeStream = "stream"
)

type Predictor interface {
	Predict(patient map[string]interface{}) (models.PredictionResult, error)
}

type Publisher interface {
	PublishDiagnostic(ctx context.Context, event models.DiagnosticEvent) error
}

type Service struct {
	predictor Predictor
	gateway   llm.Gateway
	publisher Publisher
}

// NewService wires the orchestrator. publisher may be nil.
func NewService(predictor Predictor, gateway llm.Gateway, publisher Publisher) *Service {
	return &Service{predictor: predictor, gateway: gateway, publisher: publisher}
}

func (s *Service) Gateway() llm.Gateway {
	return s.gateway
}

func (s *Service) Predict(patient models.PatientData) (models.PredictionResult, error) {
	result, err := s.predictor.Predict(patient.Features())
	if err != nil {
		metrics.RecordPredictionError()
		return models.PredictionResult{}, fmt.Errorf("prediction failed: %w", err)
	}
	metrics.RecordPrediction(result.HasDiabetes, string(result.Confidence))
	return result, nil
}

// Diagnose predicts once and asks the model for a report in a single blocking call.
func (s *Service) Diagnose(ctx context.Context, patient models.PatientData) (models.DiagnosticReportResponse, error) {
	prediction, err := s.Predict(patient)
	if err != nil {
		return models.DiagnosticReportResponse{}, err
	}

	start := time.Now()
	report, err := s.gateway.Invoke(ctx, prompt.UserPrompt(patient, prediction), prompt.SystemPrompt(), reportParams())
	metrics.RecordLLMRequest(s.gateway.Name(), modeInvoke, err, time.Since(start))
	s.publish(ctx, modeInvoke, prediction, 0, start, err)
	if err != nil {
		return models.DiagnosticReportResponse{}, fmt.Errorf("generating report: %w", err)
	}

	return models.DiagnosticReportResponse{Prediction: prediction, DiagnosticReport: report}, nil
}

func (s *Service) GenerateDiagnosticReport(ctx context.Context, patient models.PatientData) (string, error) {
	resp, err := s.Diagnose(ctx, patient)
	if err != nil {
		return "", err
	}
	return resp.DiagnosticReport, nil
}

// GenerateDiagnosticReportStream runs the prediction before returning, so a
// prediction failure surfaces as err rather than inside the sequence. Chunks
// are forwarded unmodified.
func (s *Service) GenerateDiagnosticReportStream(ctx context.Context, patient models.PatientData) (iter.Seq2[string, error], error) {
	prediction, err := s.Predict(patient)
	if err != nil {
		return nil, err
	}

	upstream := s.gateway.GenerateResponse(ctx, prompt.UserPrompt(patient, prediction), prompt.SystemPrompt(), reportParams())
	return func(yield func(string, error) bool) {
		start := time.Now()
		chunks := 0
		var streamErr error
		defer func() {
			metrics.RecordLLMRequest(s.gateway.Name(), modeStream, streamErr, time.Since(start))
			metrics.RecordStreamChunks(s.gateway.Name(), chunks)
			s.publish(ctx, modeStream, prediction, chunks, start, streamErr)
		}()

		for chunk, err := range upstream {
			if err != nil {
				streamErr = err
				yield("", err)
				return
			}
			chunks++
			if !yield(chunk, nil) {
				return
			}
		}
	}, nil
}

func reportParams() llm.Params {
	return llm.Params{Temperature: reportTemperature, TopP: reportTopP}
}

func (s *Service) publish(ctx context.Context, mode string, prediction models.PredictionResult, chunks int, start time.Time, err error) {
	if s.publisher == nil {
		return
	}

	event := models.DiagnosticEvent{
		Type:        models.EventDiagnosticCompleted,
		RequestID:   middleware.RequestID(ctx),
		Mode:        mode,
		Provider:    s.gateway.Name(),
		Model:       s.gateway.ChatModel().Model,
		HasDiabetes: prediction.HasDiabetes,
		Confidence:  prediction.Confidence,
		Chunks:      chunks,
		LatencyMs:   time.Since(start).Milliseconds(),
	}
	if err != nil {
		event.Type = models.EventDiagnosticFailed
		event.Error = err.Error()
	}

	// The request context may already be cancelled by a disconnecting client.
	if perr := s.publisher.PublishDiagnostic(context.WithoutCancel(ctx), event); perr != nil {
		logger.WithRequestID(event.RequestID).WithError(perr).Warn("Failed to publish diagnostic event")
	}
}
