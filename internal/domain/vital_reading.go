package domain

import "time"

// VitalReading is one ingested sample from a bedside/wearable device
// (corresponds to the vital_readings table). Scenario fields are
// denormalized onto the row at ingestion time for audit and reporting;
// a reading is never updated, only inserted and eventually pruned by
// the retention policy.
type VitalReading struct {
	ID        string  `db:"reading_id"` // UUID, PRIMARY KEY
	PatientID string  `db:"patient_id"` // UUID, NOT NULL
	DeviceID  string  `db:"device_id"`  // NOT NULL

	HeartRate   int     `db:"heart_rate"`  // bpm
	SpO2        int     `db:"spo2"`        // percent
	Temperature float64 `db:"temperature"` // °C

	RiskLevel RiskLevel `db:"risk_level"` // NOT NULL

	// Clinical scenario snapshot
	ScenarioID      int    `db:"scenario_id"`
	SpecificCause   string `db:"specific_cause"`
	PossibleCauses  string `db:"possible_causes"`
	Symptoms        string `db:"symptoms"`
	Recommendations string `db:"recommendations"`

	RecordedAt time.Time `db:"recorded_at"` // NOT NULL
}

// ToJSON converts the reading for HTTP responses.
func (v *VitalReading) ToJSON() map[string]any {
	return map[string]any{
		"readingId":       v.ID,
		"patientId":       v.PatientID,
		"deviceId":        v.DeviceID,
		"heartRate":       v.HeartRate,
		"spo2":            v.SpO2,
		"temperature":     v.Temperature,
		"riskLevel":       string(v.RiskLevel),
		"scenarioId":      v.ScenarioID,
		"specificCause":   v.SpecificCause,
		"possibleCauses":  v.PossibleCauses,
		"symptoms":        v.Symptoms,
		"recommendations": v.Recommendations,
		"recordedAt":      v.RecordedAt,
	}
}
