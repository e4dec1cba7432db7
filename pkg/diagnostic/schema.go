package diagnostic

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/synaptica-ai/diagnostic/pkg/common/models"
)

//go:embed patient_schema.json
var patientSchemaJSON []byte

var (
	patientSchema    *jsonschema.Schema
	patientSchemaErr error
	patientOnce      sync.Once
)

func compiledPatientSchema() (*jsonschema.Schema, error) {
	patientOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("patient_schema.json", bytes.NewReader(patientSchemaJSON)); err != nil {
			patientSchemaErr = err
			return
		}
		patientSchema, patientSchemaErr = compiler.Compile("patient_schema.json")
	})
	return patientSchema, patientSchemaErr
}

// DecodePatient checks body against the patient schema and decodes it.
// Unparseable JSON wraps ErrMalformedBody; schema violations are ValidationErrors.
func DecodePatient(body []byte) (models.PatientData, error) {
	var patient models.PatientData

	schema, err := compiledPatientSchema()
	if err != nil {
		return patient, fmt.Errorf("compiling patient schema: %w", err)
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return patient, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if err := schema.Validate(doc); err != nil {
		return patient, ValidationError{reason: err}
	}

	if err := json.Unmarshal(body, &patient); err != nil {
		return patient, ValidationError{reason: err}
	}
	return patient, nil
}
