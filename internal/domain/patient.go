package domain

import (
	"database/sql"
	"time"
)

// Patient carries the device-binding state and current risk level
// (corresponds to the patients table). Full demographics CRUD lives
// outside this service; only the fields the ingestion and binding
// pipelines touch are modeled here.
type Patient struct {
	ID               string    `db:"patient_id"` // UUID, PRIMARY KEY
	FullName         string    `db:"full_name"`  // NOT NULL
	AssignedDoctorID string    `db:"assigned_doctor_id"` // UUID, NOT NULL
	CurrentRiskLevel RiskLevel `db:"current_risk_level"` // NOT NULL, default 'NORMAL'

	// Device binding. DeviceID survives unassignment for audit; a
	// binding is active only while DeviceAssignedAt is set and the
	// optional duration has not elapsed.
	DeviceID                 sql.NullString `db:"device_id"`
	DeviceAssignedAt         sql.NullTime   `db:"device_assigned_at"`
	DeviceAssignmentDuration sql.NullInt64  `db:"device_assignment_duration"` // seconds
}

// BindingActiveAt reports whether the patient's device binding is
// active at the given instant. Expiry is computed lazily from
// (assigned-at, duration); an expired row is kept, never swept.
func (p *Patient) BindingActiveAt(now time.Time) bool {
	if !p.DeviceAssignedAt.Valid {
		return false
	}
	if !p.DeviceAssignmentDuration.Valid {
		return true
	}
	expiry := p.DeviceAssignedAt.Time.Add(time.Duration(p.DeviceAssignmentDuration.Int64) * time.Second)
	return !now.After(expiry)
}

// Doctor is the alert recipient. Only the notification fields are
// modeled; account management is out of scope.
type Doctor struct {
	ID            string         `db:"doctor_id"` // UUID, PRIMARY KEY
	FullName      string         `db:"full_name"`
	ExpoPushToken sql.NullString `db:"expo_push_token"`
}
