package models

// EducationLevel is the categorical education feature the classifier was trained on.
type EducationLevel string

const (
	EducationGraduate     EducationLevel = "Graduate"
	EducationHighschool   EducationLevel = "Highschool"
	EducationNoFormal     EducationLevel = "No formal"
	EducationPostgraduate EducationLevel = "Postgraduate"
)

// IncomeLevel is the categorical income feature the classifier was trained on.
type IncomeLevel string

const (
	IncomeHigh        IncomeLevel = "High"
	IncomeLow         IncomeLevel = "Low"
	IncomeLowerMiddle IncomeLevel = "Lower-Middle"
	IncomeMiddle      IncomeLevel = "Middle"
	IncomeUpperMiddle IncomeLevel = "Upper-Middle"
)

// PatientData carries the 18 clinical features of a single request.
type PatientData struct {
	Age                            float64        `json:"age"`
	EducationLevel                 EducationLevel `json:"education_level"`
	IncomeLevel                    IncomeLevel    `json:"income_level"`
	PhysicalActivityMinutesPerWeek float64        `json:"physical_activity_minutes_per_week"`
	DietScore                      float64        `json:"diet_score"`
	FamilyHistoryDiabetes          int            `json:"family_history_diabetes"`
	BMI                            float64        `json:"bmi"`
	WaistToHipRatio                float64        `json:"waist_to_hip_ratio"`
	SystolicBP                     float64        `json:"systolic_bp"`
	CholesterolTotal               float64        `json:"cholesterol_total"`
	HDLCholesterol                 float64        `json:"hdl_cholesterol"`
	LDLCholesterol                 float64        `json:"ldl_cholesterol"`
	Triglycerides                  float64        `json:"triglycerides"`
	GlucoseFasting                 float64        `json:"glucose_fasting"`
	GlucosePostprandial            float64        `json:"glucose_postprandial"`
	InsulinLevel                   float64        `json:"insulin_level"`
	HbA1c                          float64        `json:"hba1c"`
	DiabetesRiskScore              float64        `json:"diabetes_risk_score"`
}

// Features returns the raw field mapping consumed by the preprocessor. Keys match the JSON names.
func (p PatientData) Features() map[string]interface{} {
	return map[string]interface{}{
		"age":                                p.Age,
		"education_level":                    string(p.EducationLevel),
		"income_level":                       string(p.IncomeLevel),
		"physical_activity_minutes_per_week": p.PhysicalActivityMinutesPerWeek,
		"diet_score":                         p.DietScore,
		"family_history_diabetes":            p.FamilyHistoryDiabetes,
		"bmi":                                p.BMI,
		"waist_to_hip_ratio":                 p.WaistToHipRatio,
		"systolic_bp":                        p.SystolicBP,
		"cholesterol_total":                  p.CholesterolTotal,
		"hdl_cholesterol":                    p.HDLCholesterol,
		"ldl_cholesterol":                    p.LDLCholesterol,
		"triglycerides":                      p.Triglycerides,
		"glucose_fasting":                    p.GlucoseFasting,
		"glucose_postprandial":               p.GlucosePostprandial,
		"insulin_level":                      p.InsulinLevel,
		"hba1c":                              p.HbA1c,
		"diabetes_risk_score":                p.DiabetesRiskScore,
	}
}
