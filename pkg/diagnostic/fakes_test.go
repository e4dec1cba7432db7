package diagnostic

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/synaptica-ai/diagnostic/pkg/common/models"
	"github.com/synaptica-ai/diagnostic/pkg/llm"
)

type fakePredictor struct {
	result models.PredictionResult
	err    error
	calls  int
}

func (f *fakePredictor) Predict(patient map[string]interface{}) (models.PredictionResult, error) {
	f.calls++
	if f.err != nil {
		return models.PredictionResult{}, f.err
	}
	return f.result, nil
}

type fakeGateway struct {
	report    string
	chunks    []string
	invokeErr error
	streamErr error
	errAfter  int

	mu          sync.Mutex
	prompts     []string
	systems     []string
	params      []llm.Params
	streamCalls int
	stopped     bool
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) record(prompt, system string, params llm.Params) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.systems = append(f.systems, system)
	f.params = append(f.params, params)
}

func (f *fakeGateway) Invoke(ctx context.Context, prompt, systemPrompt string, params llm.Params) (string, error) {
	f.record(prompt, systemPrompt, params)
	if f.invokeErr != nil {
		return "", f.invokeErr
	}
	return f.report, nil
}

func (f *fakeGateway) GenerateResponse(ctx context.Context, userInput, systemPrompt string, params llm.Params) iter.Seq2[string, error] {
	f.record(userInput, systemPrompt, params)
	return func(yield func(string, error) bool) {
		f.mu.Lock()
		f.streamCalls++
		f.mu.Unlock()
		for i, chunk := range f.chunks {
			if f.streamErr != nil && i == f.errAfter {
				yield("", f.streamErr)
				return
			}
			if !yield(chunk, nil) {
				f.mu.Lock()
				f.stopped = true
				f.mu.Unlock()
				return
			}
		}
		if f.streamErr != nil && f.errAfter >= len(f.chunks) {
			yield("", f.streamErr)
		}
	}
}

func (f *fakeGateway) AvailableModels() []string { return []string{"fake-1", "fake-2"} }

func (f *fakeGateway) ChatModel() llm.ChatModel {
	return llm.ChatModel{Provider: "fake", Model: "fake-1", Temperature: llm.DefaultTemperature, TopP: llm.DefaultTopP, Streaming: true}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.DiagnosticEvent
	err    error
}

func (f *fakePublisher) PublishDiagnostic(ctx context.Context, event models.DiagnosticEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakePublisher) all() []models.DiagnosticEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.DiagnosticEvent(nil), f.events...)
}

var errUpstream = errors.New("upstream unavailable")

func positivePrediction() models.PredictionResult {
	return models.NewPredictionResult(0.85, 0.5)
}

func samplePatient() models.PatientData {
	return models.PatientData{
		Age:                            45,
		EducationLevel:                 models.EducationGraduate,
		IncomeLevel:                    models.IncomeMiddle,
		PhysicalActivityMinutesPerWeek: 150,
		DietScore:                      7.5,
		FamilyHistoryDiabetes:          1,
		BMI:                            27.5,
		WaistToHipRatio:                0.85,
		SystolicBP:                     130,
		CholesterolTotal:               200,
		HDLCholesterol:                 50,
		LDLCholesterol:                 120,
		Triglycerides:                  150,
		GlucoseFasting:                 100,
		GlucosePostprandial:            140,
		InsulinLevel:                   10,
		HbA1c:                          5.7,
		DiabetesRiskScore:              5,
	}
}
