package domain

import (
	"database/sql"
	"time"
)

// DiseaseStatus is the lifecycle state of a recorded disease.
type DiseaseStatus string

const (
	DiseaseActive     DiseaseStatus = "ACTIVE"
	DiseaseMonitoring DiseaseStatus = "MONITORING"
	DiseaseCleared    DiseaseStatus = "CLEARED"
	DiseaseChronic    DiseaseStatus = "CHRONIC"
)

// DiseaseHistory is a longer-lived record created from a disease match
// or entered manually by a doctor (corresponds to the
// patient_disease_history table).
type DiseaseHistory struct {
	ID             string        `db:"history_id"` // UUID, PRIMARY KEY
	PatientID      string        `db:"patient_id"` // UUID, NOT NULL
	DiseaseID      int           `db:"disease_id"` // catalog id, NOT NULL
	DiseaseName    string        `db:"disease_name"`
	PossibleCauses string        `db:"possible_causes"`
	Status         DiseaseStatus `db:"status"` // NOT NULL, default 'ACTIVE'

	DetectionConfidence float64 `db:"detection_confidence"` // 0-100

	// Vitals snapshot at detection time, nullable when recorded manually
	// with no readings on file.
	DetectedTemperature sql.NullFloat64 `db:"detected_temperature"`
	DetectedHeartRate   sql.NullInt64   `db:"detected_heart_rate"`
	DetectedSpO2        sql.NullInt64   `db:"detected_spo2"`

	ObservedSymptoms string         `db:"observed_symptoms"`
	DoctorNotes      sql.NullString `db:"doctor_notes"`

	DetectedAt time.Time    `db:"detected_at"` // NOT NULL
	ClearedAt  sql.NullTime `db:"cleared_at"`
}

// ToJSON converts the record for HTTP responses.
func (h *DiseaseHistory) ToJSON() map[string]any {
	m := map[string]any{
		"historyId":           h.ID,
		"patientId":           h.PatientID,
		"diseaseId":           h.DiseaseID,
		"diseaseName":         h.DiseaseName,
		"possibleCauses":      h.PossibleCauses,
		"status":              string(h.Status),
		"detectionConfidence": h.DetectionConfidence,
		"observedSymptoms":    h.ObservedSymptoms,
		"detectedAt":          h.DetectedAt,
	}
	if h.DetectedTemperature.Valid {
		m["detectedTemperature"] = h.DetectedTemperature.Float64
	}
	if h.DetectedHeartRate.Valid {
		m["detectedHeartRate"] = h.DetectedHeartRate.Int64
	}
	if h.DetectedSpO2.Valid {
		m["detectedSpo2"] = h.DetectedSpO2.Int64
	}
	if h.DoctorNotes.Valid {
		m["doctorNotes"] = h.DoctorNotes.String
	}
	if h.ClearedAt.Valid {
		m["clearedAt"] = h.ClearedAt.Time
	}
	return m
}
