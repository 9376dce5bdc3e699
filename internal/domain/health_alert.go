package domain

import "time"

// AlertType distinguishes critical from warning alerts.
type AlertType string

const (
	AlertCritical AlertType = "CRITICAL"
	AlertWarning  AlertType = "WARNING"
)

// HealthAlert is raised when a classified reading crosses into
// MODERATE or CRITICAL (corresponds to the health_alerts table).
// Alerts are never auto-cleared by later NORMAL readings; marking
// read is a manual doctor action.
type HealthAlert struct {
	ID        string    `db:"alert_id"`   // UUID, PRIMARY KEY
	PatientID string    `db:"patient_id"` // UUID, NOT NULL
	DoctorID  string    `db:"doctor_id"`  // UUID, NOT NULL
	ReadingID string    `db:"reading_id"` // UUID, NOT NULL
	AlertType AlertType `db:"alert_type"` // NOT NULL
	Message   string    `db:"message"`    // NOT NULL
	IsRead    bool      `db:"is_read"`    // NOT NULL, default false
	CreatedAt time.Time `db:"created_at"` // NOT NULL
}

// ToJSON converts the alert for HTTP responses.
func (a *HealthAlert) ToJSON() map[string]any {
	return map[string]any{
		"alertId":   a.ID,
		"patientId": a.PatientID,
		"doctorId":  a.DoctorID,
		"readingId": a.ReadingID,
		"alertType": string(a.AlertType),
		"message":   a.Message,
		"isRead":    a.IsRead,
		"createdAt": a.CreatedAt,
	}
}
