package triage

import "medico-vitals/internal/domain"

// Scenario is one of 17 fixed clinical classifications derived from a
// (heart rate, SpO2, temperature) triple.
type Scenario struct {
	ID              int              `json:"scenarioId"`
	RiskLevel       domain.RiskLevel `json:"riskLevel"`
	SpecificCause   string           `json:"specificCause"`
	PossibleCauses  string           `json:"possibleCauses"`
	Symptoms        string           `json:"symptoms"`
	Recommendations string           `json:"recommendations"`
}

// Normal vital bands. Temperature bands follow the clinical reference
// table in Fahrenheit.
const (
	tempVeryLowF  = 96.0  // 35.6°C
	tempLowF      = 97.0  // 36.1°C
	tempHighF     = 99.0  // 37.2°C
	tempVeryHighF = 100.0 // 37.8°C

	hrLow   = 60
	hrHigh  = 100
	spo2Low = 95
)

// CelsiusToFahrenheit converts a body temperature reading.
func CelsiusToFahrenheit(celsius float64) float64 {
	return celsius*9.0/5.0 + 32.0
}

// scenarioRule pairs a predicate over (HR, temp °F, SpO2) with its
// scenario. The predicates overlap; evaluation order is the tie-break
// and must not be reordered.
type scenarioRule struct {
	matches  func(hr int, tempF float64, spo2 int) bool
	scenario Scenario
}

func hrNormal(hr int) bool         { return hr >= hrLow && hr <= hrHigh }
func tempNormal(tempF float64) bool { return tempF >= tempLowF && tempF <= tempHighF }

// scenarioRules is evaluated top to bottom, first match wins.
//
// Known quirks carried over from the clinical reference table:
//   - the 96-97°F band is unreachable: every rule tests either
//     tempF < 96 or tempF < 97, and the <96 rules (1) precede the <97
//     rules that would otherwise cover the band;
//   - scenario 16 duplicates scenario 2's predicate and can never fire.
// Both are kept as-is so scenario ids stay stable.
var scenarioRules = []scenarioRule{
	{
		// Scenario 1: HR<60, Temp<96°F, SpO2<95
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hr < hrLow && tempF < tempVeryLowF && spo2 < spo2Low
		},
		scenario: Scenario{
			ID:              1,
			RiskLevel:       domain.RiskCritical,
			SpecificCause:   "Bradycardia, Hypothermia, Hypoxemia",
			PossibleCauses:  "Cardiac issues, hypothermia, respiratory problems, or other serious conditions",
			Symptoms:        "Dizziness or fainting, Shortness of Breath, Chest Pain or Palpitation",
			Recommendations: "1. Seek immediate medical attention. 2. Monitor vitals closely. 3. Keep warm (if hypothermic)",
		},
	},
	{
		// Scenario 2: HR>100, Temp<97°F, SpO2<95
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hr > hrHigh && tempF < tempLowF && spo2 < spo2Low
		},
		scenario: Scenario{
			ID:              2,
			RiskLevel:       domain.RiskCritical,
			SpecificCause:   "Tachycardia, Mild Hypothermia, Mild Hypoxemia",
			PossibleCauses:  "Serious underlying condition, sepsis, or shock",
			Symptoms:        "Dizziness, confusion, shortness of breath",
			Recommendations: "1. Seek medical attention IMMEDIATELY. 2. Monitor vitals closely",
		},
	},
	{
		// Scenario 3: HR normal, Temp<97°F, SpO2 normal
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hrNormal(hr) && tempF < tempLowF && spo2 >= spo2Low
		},
		scenario: Scenario{
			ID:              3,
			RiskLevel:       domain.RiskModerate,
			SpecificCause:   "Mild Hypothermia",
			PossibleCauses:  "Mild hypothermia, possibly due to cold environment or other factors",
			Symptoms:        "Shivering, confusion, dizziness",
			Recommendations: "1. Warm up with blankets or warm fluids. 2. Monitor vitals. 3. Consult a healthcare pro if symptoms persist",
		},
	},
	{
		// Scenario 4: HR normal, Temp>100°F, SpO2 normal
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hrNormal(hr) && tempF > tempVeryHighF && spo2 >= spo2Low
		},
		scenario: Scenario{
			ID:              4,
			RiskLevel:       domain.RiskModerate,
			SpecificCause:   "Mild Fever",
			PossibleCauses:  "Infection, inflammation, or other minor issues",
			Symptoms:        "Headache, body ache, sweating",
			Recommendations: "1. Stay hydrated. 2. Rest. 3. Monitor temp; see a doctor if it spikes or persists",
		},
	},
	{
		// Scenario 5: HR<60, Temp normal, SpO2 normal
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hr < hrLow && tempNormal(tempF) && spo2 >= spo2Low
		},
		scenario: Scenario{
			ID:              5,
			RiskLevel:       domain.RiskModerate,
			SpecificCause:   "Bradycardia",
			PossibleCauses:  "Athletic training, medication side effect, or underlying condition",
			Symptoms:        "Dizziness, fatigue, fainting",
			Recommendations: "1. Consult a healthcare pro to rule out underlying issues. 2. Monitor HR and symptoms",
		},
	},
	{
		// Scenario 6: HR>100, Temp normal, SpO2 normal
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hr > hrHigh && tempNormal(tempF) && spo2 >= spo2Low
		},
		scenario: Scenario{
			ID:              6,
			RiskLevel:       domain.RiskModerate,
			SpecificCause:   "Tachycardia",
			PossibleCauses:  "Stress, anxiety, caffeine, or underlying condition",
			Symptoms:        "Palpitations, shortness of breath, dizziness",
			Recommendations: "1. Relax and hydrate. 2. Consult a healthcare pro if symptoms persist",
		},
	},
	{
		// Scenario 7: HR normal, Temp normal, SpO2<95
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hrNormal(hr) && tempNormal(tempF) && spo2 < spo2Low
		},
		scenario: Scenario{
			ID:              7,
			RiskLevel:       domain.RiskModerate,
			SpecificCause:   "Mild Hypoxemia",
			PossibleCauses:  "Respiratory issues, altitude, or other factors",
			Symptoms:        "Shortness of breath, dizziness, headache",
			Recommendations: "1. Take deep breaths and relax. 2. Consult a healthcare pro to check for underlying issues",
		},
	},
	{
		// Scenario 8: HR<60, Temp<97°F, SpO2 normal
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hr < hrLow && tempF < tempLowF && spo2 >= spo2Low
		},
		scenario: Scenario{
			ID:              8,
			RiskLevel:       domain.RiskCritical,
			SpecificCause:   "Bradycardia, Mild Hypothermia",
			PossibleCauses:  "Underlying condition, hypothermia, or medication side effect",
			Symptoms:        "Dizziness, shivering, fatigue",
			Recommendations: "1. Seek medical attention ASAP. 2. Warm up and monitor vitals",
		},
	},
	{
		// Scenario 9: HR<60, Temp>99°F, SpO2 normal
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hr < hrLow && tempF > tempHighF && spo2 >= spo2Low
		},
		scenario: Scenario{
			ID:              9,
			RiskLevel:       domain.RiskModerate,
			SpecificCause:   "Bradycardia, Mild Fever",
			PossibleCauses:  "Infection, inflammation, or medication effect",
			Symptoms:        "Dizziness, fatigue, sweating",
			Recommendations: "1. Consult a healthcare pro to check for underlying issues. 2. Monitor symptoms and stay hydrated",
		},
	},
	{
		// Scenario 10: HR>100, Temp<97°F, SpO2 normal
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hr > hrHigh && tempF < tempLowF && spo2 >= spo2Low
		},
		scenario: Scenario{
			ID:              10,
			RiskLevel:       domain.RiskCritical,
			SpecificCause:   "Tachycardia, Mild Hypothermia",
			PossibleCauses:  "Infection, stress, or underlying condition",
			Symptoms:        "Palpitations, shivering, dizziness",
			Recommendations: "1. Seek medical attention ASAP. 2. Warm up and monitor vitals",
		},
	},
	{
		// Scenario 11: HR>100, Temp>100°F, SpO2 normal
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hr > hrHigh && tempF > tempVeryHighF && spo2 >= spo2Low
		},
		scenario: Scenario{
			ID:              11,
			RiskLevel:       domain.RiskCritical,
			SpecificCause:   "Tachycardia, Fever",
			PossibleCauses:  "Infection, inflammation, or other issues",
			Symptoms:        "Sweating, body ache, palpitations",
			Recommendations: "1. Consult a healthcare pro ASAP. 2. Stay hydrated and rest",
		},
	},
	{
		// Scenario 12: HR normal, Temp<97°F, SpO2<95
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hrNormal(hr) && tempF < tempLowF && spo2 < spo2Low
		},
		scenario: Scenario{
			ID:              12,
			RiskLevel:       domain.RiskCritical,
			SpecificCause:   "Mild Hypothermia, Mild Hypoxemia",
			PossibleCauses:  "Underlying condition, environmental exposure",
			Symptoms:        "Shivering, shortness of breath, dizziness",
			Recommendations: "1. Seek medical attention ASAP. 2. Warm up and get oxygen checked",
		},
	},
	{
		// Scenario 13: HR normal, Temp>99°F, SpO2<95
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hrNormal(hr) && tempF > tempHighF && spo2 < spo2Low
		},
		scenario: Scenario{
			ID:              13,
			RiskLevel:       domain.RiskCritical,
			SpecificCause:   "Fever, Mild Hypoxemia",
			PossibleCauses:  "Respiratory infection, pneumonia, or other issues",
			Symptoms:        "Shortness of breath, cough, fatigue",
			Recommendations: "1. Consult a healthcare pro ASAP. 2. Monitor symptoms and oxygen levels",
		},
	},
	{
		// Scenario 14: HR<60, Temp normal, SpO2<95
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hr < hrLow && tempNormal(tempF) && spo2 < spo2Low
		},
		scenario: Scenario{
			ID:              14,
			RiskLevel:       domain.RiskCritical,
			SpecificCause:   "Bradycardia, Mild Hypoxemia",
			PossibleCauses:  "Underlying heart or lung issue",
			Symptoms:        "Dizziness, fatigue, shortness of breath",
			Recommendations: "1. Seek medical attention ASAP. 2. Monitor vitals and oxygen levels",
		},
	},
	{
		// Scenario 15: HR>100, Temp normal, SpO2<95
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hr > hrHigh && tempNormal(tempF) && spo2 < spo2Low
		},
		scenario: Scenario{
			ID:              15,
			RiskLevel:       domain.RiskCritical,
			SpecificCause:   "Tachycardia, Mild Hypoxemia",
			PossibleCauses:  "Respiratory issues, anxiety, or underlying condition",
			Symptoms:        "Palpitations, shortness of breath, dizziness",
			Recommendations: "1. Consult a healthcare pro ASAP. 2. Take deep breaths and relax",
		},
	},
	{
		// Scenario 16: HR>100, Temp<97°F, SpO2<95 (same predicate as
		// scenario 2, shadowed)
		matches: func(hr int, tempF float64, spo2 int) bool {
			return hr > hrHigh && tempF < tempLowF && spo2 < spo2Low
		},
		scenario: Scenario{
			ID:              16,
			RiskLevel:       domain.RiskCritical,
			SpecificCause:   "Tachycardia, Mild Hypothermia, Mild Hypoxemia",
			PossibleCauses:  "Serious underlying condition, sepsis, or shock",
			Symptoms:        "Dizziness, confusion, shortness of breath",
			Recommendations: "1. Seek medical attention IMMEDIATELY. 2. Monitor vitals closely",
		},
	},
}

// scenarioNormal is returned when no rule matches.
var scenarioNormal = Scenario{
	ID:              0,
	RiskLevel:       domain.RiskNormal,
	SpecificCause:   "All vitals normal",
	PossibleCauses:  "Healthy status",
	Symptoms:        "None",
	Recommendations: "Continue regular monitoring",
}

// Classify maps a vital triple to exactly one clinical scenario.
// Pure and total: it never fails and repeated calls with the same
// input return the same scenario. Temperature is in Celsius.
func Classify(heartRate, spo2 int, tempCelsius float64) Scenario {
	tempF := CelsiusToFahrenheit(tempCelsius)
	for _, rule := range scenarioRules {
		if rule.matches(heartRate, tempF, spo2) {
			return rule.scenario
		}
	}
	return scenarioNormal
}
