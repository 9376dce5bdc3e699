package triage

import "strings"

// VitalThresholds are the optional bounds a disease profile checks.
// A nil bound means the parameter family is not evaluated for that
// disease. Temperatures are in Celsius.
type VitalThresholds struct {
	TempMin *float64 `json:"tempMin,omitempty"`
	TempMax *float64 `json:"tempMax,omitempty"`
	HRMin   *int     `json:"hrMin,omitempty"`
	HRMax   *int     `json:"hrMax,omitempty"`
	SpO2Min *int     `json:"spo2Min,omitempty"` // below this is concerning
	SpO2Max *int     `json:"spo2Max,omitempty"` // unused, kept for table shape
	RRMin   *int     `json:"rrMin,omitempty"`   // above this is concerning
	RRMax   *int     `json:"rrMax,omitempty"`
}

// Disease is one immutable catalog profile.
type Disease struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	PossibleCauses  string          `json:"possibleCauses"`
	Thresholds      VitalThresholds `json:"thresholds"`
	Symptoms        []string        `json:"symptoms"`
	Recommendations []string        `json:"recommendations"`
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

// catalog is built once at init and never mutated; concurrent readers
// need no synchronization. Ids are stable.
var catalog = []Disease{
	{
		ID:             1,
		Name:           "Cough, Cold, and Sore Throat",
		PossibleCauses: "Usually viral (e.g., flu, COVID-19) or bacterial infections, allergies, or irritants",
		Thresholds:     VitalThresholds{TempMin: fp(38.0), HRMin: ip(60), HRMax: ip(100), SpO2Min: ip(95), RRMin: ip(24)},
		Symptoms: []string{
			"Cough (dry/productive)",
			"Runny/stuffy nose",
			"Sore, scratchy throat",
			"Fatigue",
			"Headache",
			"Body aches",
		},
		Recommendations: []string{
			"Rest and hydration",
			"Saline gargles or throat lozenges for sore throat",
			"Over-the-counter meds (e.g., paracetamol, decongestants)",
			"Humidifier to ease congestion",
			"Consult doctor if symptoms persist beyond 7 days",
		},
	},
	{
		ID:             2,
		Name:           "Fever",
		PossibleCauses: "Usually an infection (viral or bacterial), inflammation, or immune response",
		Thresholds:     VitalThresholds{TempMin: fp(38.0), HRMax: ip(100)},
		Symptoms: []string{
			"Elevated body temperature",
			"Chills, sweating",
			"Headache",
			"Body aches",
			"Fatigue",
			"Loss of appetite",
		},
		Recommendations: []string{
			"Monitor temperature regularly",
			"Stay hydrated and rest",
			"Paracetamol or ibuprofen (consult dosage)",
			"Consult a doctor if fever >40°C (104°F) or persists >3 days",
		},
	},
	{
		ID:             3,
		Name:           "Diarrhea",
		PossibleCauses: "Usually due to infections (viral, bacterial, parasitic), food intolerance, or medications",
		Thresholds:     VitalThresholds{TempMin: fp(38.0), HRMax: ip(100), SpO2Min: ip(95)},
		Symptoms: []string{
			"Frequent, loose stools",
			"Abdominal cramps and pain",
			"Nausea, vomiting",
			"Dehydration (thirst, dizziness)",
		},
		Recommendations: []string{
			"Stay hydrated with ORS (Oral Rehydration Solution)",
			"Bland diet (e.g., bananas, rice, toast)",
			"Avoid spicy, oily foods",
			"Consult a doctor if severe dehydration, blood in stool, or persists >2 days",
		},
	},
	{
		ID:             4,
		Name:           "Malaria",
		PossibleCauses: "Mosquito-borne Plasmodium parasite (e.g., P. falciparum, P. vivax)",
		Thresholds:     VitalThresholds{TempMin: fp(38.0), HRMax: ip(100), SpO2Min: ip(95)},
		Symptoms: []string{
			"Fever with chills and sweating",
			"Headache",
			"Body aches",
			"Nausea, vomiting",
			"Fatigue, weakness",
		},
		Recommendations: []string{
			"Get diagnosed with a blood test (required for confirmation)",
			"Antimalarial medications (e.g., ACTs) as prescribed",
			"Rest and hydration",
			"Use mosquito nets and repellents for prevention",
		},
	},
	{
		ID:             5,
		Name:           "Chikungunya",
		PossibleCauses: "Mosquito-borne viral infection (Aedes aegypti/albopictus)",
		Thresholds:     VitalThresholds{TempMin: fp(38.5), HRMax: ip(100)},
		Symptoms: []string{
			"Sudden high fever",
			"Severe joint pain and swelling",
			"Rash",
			"Headache",
			"Fatigue",
			"Muscle pain",
		},
		Recommendations: []string{
			"Rest and hydration",
			"Pain relief meds (e.g., paracetamol) - avoid aspirin/NSAIDs initially",
			"Anti-inflammatory meds (consult doctor)",
			"Mosquito control and protective clothing",
		},
	},
	{
		ID:             6,
		Name:           "Hepatitis",
		PossibleCauses: "Viral infections (Hep A, B, C, D, E), toxins, or autoimmune issues",
		Thresholds:     VitalThresholds{TempMin: fp(37.5), TempMax: fp(38.5)},
		Symptoms: []string{
			"Jaundice (yellowing eyes/skin)",
			"Fatigue",
			"Abdominal pain",
			"Nausea, loss of appetite",
			"Dark urine",
			"Pale stools",
		},
		Recommendations: []string{
			"Consult a hepatologist immediately",
			"Rest and hydration",
			"Antivirals (if viral hepatitis, as prescribed)",
			"Avoid alcohol and fatty foods",
			"Liver function tests recommended",
		},
	},
	{
		ID:             7,
		Name:           "Cholera",
		PossibleCauses: "Bacterial infection (Vibrio cholerae) from contaminated food/water",
		Thresholds:     VitalThresholds{TempMax: fp(38.0), HRMax: ip(100), SpO2Min: ip(95)},
		Symptoms: []string{
			"Profuse watery diarrhea (rice-water stools)",
			"Vomiting",
			"Severe dehydration",
			"Abdominal cramps",
			"Thirst, weakness",
		},
		Recommendations: []string{
			"ORS (Oral Rehydration Solution) immediately",
			"IV fluids if severe dehydration",
			"Antibiotics (consult doctor)",
			"Maintain hygiene and use safe water",
			"Seek emergency care if severe",
		},
	},
	{
		ID:             8,
		Name:           "Pneumonia",
		PossibleCauses: "Bacterial (e.g., Streptococcus pneumoniae), viral, or fungal lung infection",
		Thresholds:     VitalThresholds{TempMin: fp(38.0), HRMax: ip(100), SpO2Min: ip(95), RRMin: ip(20)},
		Symptoms: []string{
			"Cough with phlegm",
			"Fever, chills",
			"Chest pain",
			"Breathing difficulty",
			"Fatigue, weakness",
		},
		Recommendations: []string{
			"Consult a pulmonologist immediately",
			"Antibiotics if bacterial (as prescribed)",
			"Oxygen therapy if low SpO2",
			"Rest and hydration",
			"Chest X-ray may be required",
		},
	},
	{
		ID:             9,
		Name:           "Headache",
		PossibleCauses: "Tension, migraines, sinus issues, dehydration, stress, or underlying conditions",
		Thresholds:     VitalThresholds{TempMin: fp(38.0)},
		Symptoms: []string{
			"Throbbing/pulsating pain",
			"Sensitivity to light/sound",
			"Nausea, dizziness",
		},
		Recommendations: []string{
			"Identify triggers (e.g., stress, food, sleep)",
			"Pain relief meds (e.g., paracetamol, ibuprofen)",
			"Hydration and relaxation techniques",
			"Consult a doctor if severe or persistent",
		},
	},
	{
		ID:             10,
		Name:           "Body Ache",
		PossibleCauses: "Viral infections (e.g., flu), muscle strain, dehydration, or underlying conditions",
		Thresholds:     VitalThresholds{TempMin: fp(38.0)},
		Symptoms: []string{
			"Generalized muscle pain",
			"Fatigue, weakness",
			"Joint discomfort",
		},
		Recommendations: []string{
			"Rest and hydration",
			"Pain relief meds (e.g., paracetamol)",
			"Warm compresses, gentle stretches",
			"Consult a doctor if severe or persistent",
		},
	},
	{
		ID:             11,
		Name:           "Typhoid",
		PossibleCauses: "Bacterial infection (Salmonella Typhi) from contaminated food/water",
		// Relative bradycardia with high fever is characteristic.
		Thresholds: VitalThresholds{TempMin: fp(39.0), HRMin: ip(50), HRMax: ip(70)},
		Symptoms: []string{
			"High fever (may spike to 104°F/40°C)",
			"Abdominal pain",
			"Headache",
			"Weakness, loss of appetite",
			"Rash (rose spots in some cases)",
		},
		Recommendations: []string{
			"Antibiotics (consult doctor) - required treatment",
			"Hydration and rest",
			"Widal test or blood culture for diagnosis",
			"Maintain hygiene and safe food/water",
			"Complete the full antibiotic course",
		},
	},
	{
		ID:             12,
		Name:           "Dengue",
		PossibleCauses: "Spread by Aedes mosquito bite, Viral Infection (DENV)",
		Thresholds:     VitalThresholds{TempMin: fp(38.0)},
		Symptoms: []string{
			"High fever",
			"Severe headache",
			"Pain behind eyes",
			"Joint and muscle pain",
			"Rash",
			"Bleeding tendency (in severe cases)",
		},
		Recommendations: []string{
			"Hydrate with lots of fluids (coconut water, ORS)",
			"Rest - avoid exertion",
			"Monitor platelet count, PCV, and blood pressure",
			"Seek medical care ASAP if bleeding or signs of shock",
			"Avoid aspirin and NSAIDs (use paracetamol only)",
			"Blood test (NS1 antigen, dengue IgM/IgG) for confirmation",
		},
	},
}

// AllDiseases returns the full static catalog. Callers must not
// mutate the returned slice.
func AllDiseases() []Disease {
	return catalog
}

// DiseaseByID looks up a catalog entry by its stable id.
func DiseaseByID(id int) (Disease, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Disease{}, false
}

// DiseaseByName returns the first entry whose name contains the given
// string, case-insensitively.
func DiseaseByName(name string) (Disease, bool) {
	needle := strings.ToLower(name)
	for _, d := range catalog {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			return d, true
		}
	}
	return Disease{}, false
}
