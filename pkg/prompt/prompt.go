// Package prompt renders the system and user prompts sent to the language model.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/synaptica-ai/diagnostic/pkg/common/models"
)

const systemPrompt = "You are an endocrinologist and diabetes specialist. Analyze patient clinical data and ML prediction results to generate a clear, professional diagnostic report. Explain the prediction meaning, highlight key risk factors, provide practical recommendations, and emphasize regular medical follow-up. Keep it evidence-based and empathetic."

const closingInstruction = "Please generate a comprehensive and explanatory medical report for this patient, explaining the analysis result, the main risk factors identified, and practical recommendations for diabetes prevention or control."

func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt joins the patient block, the analysis block and the closing instruction.
func UserPrompt(patient models.PatientData, prediction models.PredictionResult) string {
	return FormatPatientData(patient) + "\n\n" + FormatPrediction(prediction) + "\n\n" + closingInstruction
}

func FormatPatientData(p models.PatientData) string {
	familyHistory := "No"
	if p.FamilyHistoryDiabetes == 1 {
		familyHistory = "Yes"
	}

	var b strings.Builder
	b.WriteString("\nPATIENT DATA:\n")
	line := func(label, value, unit string) {
		fmt.Fprintf(&b, "- %s: %s%s\n", label, value, unit)
	}
	line("Age", num(p.Age), " years")
	line("Education level", orNA(string(p.EducationLevel)), "")
	line("Income level", orNA(string(p.IncomeLevel)), "")
	line("Physical activity", num(p.PhysicalActivityMinutesPerWeek), " minutes/week")
	line("Diet score", num(p.DietScore), "/10")
	line("Family history of diabetes", familyHistory, "")
	line("BMI", num(p.BMI), " kg/m²")
	line("Waist-to-hip ratio", num(p.WaistToHipRatio), "")
	line("Systolic blood pressure", num(p.SystolicBP), " mmHg")
	line("Total cholesterol", num(p.CholesterolTotal), " mg/dL")
	line("HDL cholesterol", num(p.HDLCholesterol), " mg/dL")
	line("LDL cholesterol", num(p.LDLCholesterol), " mg/dL")
	line("Triglycerides", num(p.Triglycerides), " mg/dL")
	line("Fasting glucose", num(p.GlucoseFasting), " mg/dL")
	line("Postprandial glucose", num(p.GlucosePostprandial), " mg/dL")
	line("Insulin level", num(p.InsulinLevel), " μU/mL")
	line("HbA1c", num(p.HbA1c), "%")
	line("Diabetes risk score", num(p.DiabetesRiskScore), "/10")
	return b.String()
}

func FormatPrediction(r models.PredictionResult) string {
	verdict := "Diabetes not detected"
	if r.HasDiabetes {
		verdict = "DIABETES DETECTED"
	}
	return fmt.Sprintf("\nANALYSIS RESULT:\n- Prediction: %s\n- Probability: %.2f%%\n- Confidence level: %s\n- Threshold used: %.4f\n",
		verdict, r.Probability*100, strings.ToUpper(string(r.Confidence)), r.ThresholdUsed)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
